package neo4j

// Cypher query constants. The batch templates are parameterised over an
// UNWIND $rows list; ResetDatabase takes no parameters, and MergeProjectNode
// and DeleteFileSubtree take scalar parameters.
const (
	// ResetDatabase clears the whole graph.
	ResetDatabase = `MATCH (n) DETACH DELETE n`

	// MergeProjectNode creates the dual-labelled Project+Folder node for
	// the project root.
	MergeProjectNode = `
MERGE (p:Project:Folder {path: $path})
SET p.name = $name, p.commit = $commit
`

	// MergeFolders upserts folder nodes and CONTAINS edges from their
	// parent (either another Folder or, at depth 0, the Project). Rows
	// must be submitted in ascending-depth order so parents exist first.
	MergeFolders = `
UNWIND $rows AS row
MERGE (child:Folder {path: row.path})
SET child.name = row.name
WITH child, row
MATCH (parent) WHERE (parent:Folder OR parent:Project) AND parent.path = row.parentPath
MERGE (parent)-[:CONTAINS]->(child)
`

	// MergeFiles upserts file nodes and their CONTAINS edge from the
	// owning folder or project.
	MergeFiles = `
UNWIND $rows AS row
MERGE (f:File {path: row.path})
SET f.name = row.name
WITH f, row
MATCH (parent) WHERE (parent:Folder OR parent:Project) AND parent.path = row.parentPath
MERGE (parent)-[:CONTAINS]->(f)
`

	// MergeFunctionNodes upserts Function nodes (Pass P2).
	MergeFunctionNodes = `
UNWIND $rows AS row
MERGE (n:Function {id: row.id})
SET n.name = row.name, n.kind = row.kind, n.signature = row.signature,
    n.returnType = row.returnType, n.scope = row.scope, n.path = row.path,
    n.line = row.line, n.column = row.column,
    n.bodyStartLine = row.bodyStartLine, n.bodyStartCol = row.bodyStartCol,
    n.bodyEndLine = row.bodyEndLine, n.bodyEndCol = row.bodyEndCol
`

	// MergeDataStructureNodes upserts DataStructure nodes (Pass P2).
	MergeDataStructureNodes = `
UNWIND $rows AS row
MERGE (n:DataStructure {id: row.id})
SET n.name = row.name, n.kind = row.kind, n.path = row.path,
    n.line = row.line, n.column = row.column
`

	// defines edge templates (Pass P3), one per planner strategy. MATCH is
	// label-typed per row.label ("Function" or "DataStructure") so the
	// server plans it against a label index instead of a full node scan.
	DefinesUnwindCreate = `
UNWIND $rows AS row
MATCH (f:File {path: row.filePath})
CALL {
  WITH f, row
  WITH f, row WHERE row.label = 'Function'
  MATCH (n:Function {id: row.symbolId})
  CREATE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
  UNION ALL
  WITH f, row
  WITH f, row WHERE row.label = 'DataStructure'
  MATCH (n:DataStructure {id: row.symbolId})
  CREATE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
}
RETURN count(*)
`

	DefinesGroupedMerge = `
UNWIND $rows AS row
MATCH (f:File {path: row.filePath})
CALL {
  WITH f, row
  WITH f, row WHERE row.label = 'Function'
  MATCH (n:Function {id: row.symbolId})
  MERGE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
  UNION ALL
  WITH f, row
  WITH f, row WHERE row.label = 'DataStructure'
  MATCH (n:DataStructure {id: row.symbolId})
  MERGE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
}
RETURN count(*)
`

	DefinesGroupedCreate = `
UNWIND $rows AS row
MATCH (f:File {path: row.filePath})
CALL {
  WITH f, row
  WITH f, row WHERE row.label = 'Function'
  MATCH (n:Function {id: row.symbolId})
  CREATE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
  UNION ALL
  WITH f, row
  WITH f, row WHERE row.label = 'DataStructure'
  MATCH (n:DataStructure {id: row.symbolId})
  CREATE (f)-[:DEFINES]->(n)
  RETURN count(*) AS c1
}
RETURN count(*)
`

	// calls edge templates (§4.4.c), grouped by caller file or ungrouped.
	CallsUnwindCreate = `
UNWIND $rows AS row
MATCH (caller:Function {id: row.callerId})
MATCH (callee:Function {id: row.calleeId})
CREATE (caller)-[:CALLS {line: row.line, column: row.column}]->(callee)
`

	CallsGroupedMerge = `
UNWIND $rows AS row
MATCH (caller:Function {id: row.callerId})
MATCH (callee:Function {id: row.calleeId})
MERGE (caller)-[:CALLS]->(callee)
`

	CallsGroupedCreate = `
UNWIND $rows AS row
MATCH (caller:Function {id: row.callerId})
MATCH (callee:Function {id: row.calleeId})
CREATE (caller)-[:CALLS {line: row.line, column: row.column}]->(callee)
`

	// MergeIncludes ingests INCLUDES edges (Pass P4); low volume, always
	// single-threaded unwind-merge.
	MergeIncludes = `
UNWIND $rows AS row
MATCH (a:File {path: row.including})
MATCH (b:File {path: row.included})
MERGE (a)-[:INCLUDES]->(b)
`

	// DeleteFileSubtree removes a File node and everything it DEFINES,
	// used by the incremental updater to retract a deleted file before
	// re-ingesting.
	DeleteFileSubtree = `
MATCH (f:File {path: $path})
OPTIONAL MATCH (f)-[:DEFINES]->(n)
DETACH DELETE f, n
`
)
