package indexparser

import "github.com/maraichr/clangdgraph/internal/model"

// yamlPoint mirrors clangd's {Line, Column} pair.
type yamlPoint struct {
	Line   int `yaml:"Line"`
	Column int `yaml:"Column"`
}

// yamlLocation mirrors clangd's Location shape.
type yamlLocation struct {
	FileURI string    `yaml:"FileURI"`
	Start   yamlPoint `yaml:"Start"`
	End     yamlPoint `yaml:"End"`
}

func (l yamlLocation) toLocation() model.Location {
	return model.Location{
		FileURI:   l.FileURI,
		StartLine: l.Start.Line,
		StartCol:  l.Start.Column,
		EndLine:   l.End.Line,
		EndCol:    l.End.Column,
	}
}

// yamlSymInfo mirrors clangd's SymInfo shape.
type yamlSymInfo struct {
	Kind string `yaml:"Kind"`
	Lang string `yaml:"Lang"`
}

// yamlReference mirrors one entry of a !Refs document's References list.
type yamlReference struct {
	Kind      int          `yaml:"Kind"`
	Location  yamlLocation `yaml:"Location"`
	Container string       `yaml:"Container"`
}

// rawDoc is decoded from every YAML document in the index, regardless of
// tag. Pointer fields distinguish "absent" from "present but zero".
type rawDoc struct {
	ID         *string        `yaml:"ID"`
	Name       string         `yaml:"Name"`
	SymInfo    *yamlSymInfo   `yaml:"SymInfo"`
	References []yamlReference `yaml:"References"`

	CanonicalDeclaration *yamlLocation `yaml:"CanonicalDeclaration"`
	Definition           *yamlLocation `yaml:"Definition"`
	Scope                string        `yaml:"Scope"`
	Signature            string        `yaml:"Signature"`
	ReturnType           string        `yaml:"ReturnType"`
	Type                 string        `yaml:"Type"`
}

func (d rawDoc) isSymbolDoc() bool {
	return d.ID != nil && d.SymInfo != nil
}

func (d rawDoc) isRefsDoc() bool {
	return d.ID != nil && d.References != nil && d.SymInfo == nil
}

func (d rawDoc) toSymbol() *model.Symbol {
	sym := &model.Symbol{
		ID:         *d.ID,
		Name:       d.Name,
		Kind:       model.SymbolKind(d.SymInfo.Kind),
		Scope:      d.Scope,
		Language:   d.SymInfo.Lang,
		Signature:  d.Signature,
		ReturnType: d.ReturnType,
		Type:       d.Type,
	}
	if d.CanonicalDeclaration != nil {
		loc := d.CanonicalDeclaration.toLocation()
		sym.Declaration = &loc
	}
	if d.Definition != nil {
		loc := d.Definition.toLocation()
		sym.Definition = &loc
	}
	return sym
}
