package lsp

// bibFieldDocs describes the common BibTeX and biblatex fields.
var bibFieldDocs = map[string]string{
	"abstract":     "The abstract of the work.",
	"address":      "The place of publication. biblatex calls this `location`.",
	"annote":       "An annotation for annotated bibliography styles.",
	"author":       "The author(s) of the work, separated by `and`.",
	"booktitle":    "The title of the book when only part of it is cited.",
	"chapter":      "A chapter or section number.",
	"date":         "The publication date in ISO 8601 form, for example `2024-03-01`.",
	"doi":          "The Digital Object Identifier of the work.",
	"edition":      "The edition of a printed publication, as an ordinal or a literal string.",
	"editor":       "The editor(s) of the work, separated by `and`.",
	"eprint":       "The identifier of an online publication, interpreted according to `eprinttype`.",
	"eprinttype":   "The type of `eprint`, for example `arxiv` or `jstor`.",
	"howpublished": "How an unusual work was published.",
	"institution":  "The institution that sponsored a technical report or thesis.",
	"isbn":         "The International Standard Book Number.",
	"issn":         "The International Standard Serial Number of a periodical.",
	"journal":      "The name of the journal. biblatex calls this `journaltitle`.",
	"journaltitle": "The name of the journal or periodical.",
	"key":          "Used for alphabetizing and labels when author and editor are missing.",
	"keywords":     "A comma-separated list of keywords, used for filtering.",
	"language":     "The language(s) of the work.",
	"location":     "The place(s) of publication.",
	"month":        "The month of publication, preferably as a three-letter macro such as `jan`.",
	"note":         "Miscellaneous extra information.",
	"number":       "The number of a journal issue, report or series volume.",
	"organization": "The organization that sponsored a conference or published a manual.",
	"pages":        "One or more page numbers or ranges, for example `12--34`.",
	"publisher":    "The name of the publisher.",
	"school":       "The school where a thesis was written. biblatex calls this `institution`.",
	"series":       "The name of a series or set of books.",
	"subtitle":     "The subtitle of the work.",
	"title":        "The title of the work.",
	"type":         "The type of a technical report or thesis, overriding the default.",
	"url":          "The URL of an online publication.",
	"urldate":      "The date an online resource was accessed.",
	"volume":       "The volume of a journal or multi-volume book.",
	"year":         "The year of publication.",
}
