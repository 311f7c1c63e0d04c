package latex

import "slices"

// Options controls which commands the parser recognises.
type Options struct {
	VerbatimEnvironments        []string
	LabelDefinitionCommands     []string
	LabelReferenceCommands      []string
	LabelReferenceRangeCommands []string
	CitationCommands            []string
}

// DefaultOptions returns the built-in command tables.
func DefaultOptions() Options {
	return Options{
		VerbatimEnvironments: []string{
			"verbatim", "Verbatim", "lstlisting", "minted", "comment", "alltt",
		},
		LabelDefinitionCommands: []string{"label"},
		LabelReferenceCommands: []string{
			"ref", "eqref", "pageref", "autoref", "autopageref", "nameref",
			"vref", "Vref", "vpageref", "cref", "Cref", "cpageref", "Cpageref",
			"namecref", "nameCref", "lcnamecref", "labelcref", "labelcpageref",
			"fref", "Fref", "zcref", "zref",
		},
		LabelReferenceRangeCommands: []string{
			"crefrange", "Crefrange", "cpagerefrange", "Cpagerefrange", "vrefrange", "Vrefrange",
		},
		CitationCommands: []string{
			"cite", "Cite", "nocite", "citep", "citet", "Citep", "Citet",
			"citealt", "citealp", "citenum", "citeauthor", "Citeauthor",
			"citeyear", "citeyearpar", "citetitle", "citeurl", "citedate",
			"parencite", "Parencite", "textcite", "Textcite", "footcite", "Footcite",
			"footcitetext", "autocite", "Autocite", "smartcite", "Smartcite",
			"supercite", "fullcite", "footfullcite", "volcite", "Volcite",
		},
	}
}

// Merge returns o extended with the entries of extra that o lacks.
func (o Options) Merge(extra Options) Options {
	return Options{
		VerbatimEnvironments:        union(o.VerbatimEnvironments, extra.VerbatimEnvironments),
		LabelDefinitionCommands:     union(o.LabelDefinitionCommands, extra.LabelDefinitionCommands),
		LabelReferenceCommands:      union(o.LabelReferenceCommands, extra.LabelReferenceCommands),
		LabelReferenceRangeCommands: union(o.LabelReferenceRangeCommands, extra.LabelReferenceRangeCommands),
		CitationCommands:            union(o.CitationCommands, extra.CitationCommands),
	}
}

func union(base, extra []string) []string {
	out := slices.Clone(base)
	for _, s := range extra {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

type includeShape uint8

const (
	shapeSingle includeShape = iota
	shapeList
	shapeDirFile
)

type includeCommand struct {
	kind  IncludeKind
	shape includeShape
}

var includeCommands = map[string]includeCommand{
	"include":        {IncludeTex, shapeSingle},
	"input":          {IncludeTex, shapeSingle},
	"subfile":        {IncludeTex, shapeSingle},
	"subfileinclude": {IncludeTex, shapeSingle},
	"import":         {IncludeTex, shapeDirFile},
	"subimport":      {IncludeTex, shapeDirFile},
	"inputfrom":      {IncludeTex, shapeDirFile},
	"subinputfrom":   {IncludeTex, shapeDirFile},
	"includefrom":    {IncludeTex, shapeDirFile},
	"subincludefrom": {IncludeTex, shapeDirFile},
	"bibliography":   {IncludeBibliography, shapeList},
	"addbibresource": {IncludeBibliography, shapeSingle},
	"usepackage":     {IncludePackage, shapeList},
	"RequirePackage": {IncludePackage, shapeList},
	"documentclass":  {IncludeClass, shapeSingle},
	"LoadClass":      {IncludeClass, shapeSingle},
}
