package detect

// Extension classes known to the default registry.
var (
	ClassBrace    = ExtensionClass{Name: "brace", Extensions: []string{"cs", "go"}}
	ClassTyped    = ExtensionClass{Name: "typed", Extensions: []string{"cpp", "cs", "java"}}
	ClassScript   = ExtensionClass{Name: "script", Extensions: []string{"js", "py", "groovy", "rb", "php"}}
	ClassJSON     = ExtensionClass{Name: "json", Extensions: []string{"json"}}
	ClassXML      = ExtensionClass{Name: "xml", Extensions: []string{"xml"}}
	ClassKeyValue = ExtensionClass{Name: "keyvalue", Extensions: []string{"properties", "ini"}}
)

// testerSpecs is the registry order. A .cs file is tried by both brace and
// typed.
var testerSpecs = []testerSpec{
	{
		class: ClassBrace,
		assign: []string{
			`.*{K}[a-zA-Z0-9_ \t]*:?=[ \t]*"(?P<value>{P}+)"`,
			`\.[a-zA-Z]*{K}\("(?P<value>.+)"\)`,
		},
		literal: []string{`".*{V}.*"`},
	},
	{
		class: ClassTyped,
		assign: []string{
			`string [ \ta-zA-Z0-9_]*{K}[a-zA-Z0-9_ \t]*=[ \t]*"(?P<value>{P}+)"`,
			`\.(set|with)[a-zA-Z_]*{K}\("(?P<value>.+)"\)`,
		},
		literal: []string{`".*{V}.*"`},
	},
	{
		class: ClassScript,
		assign: []string{
			`(var|let|const) [ \ta-zA-Z0-9_]*{K}[a-zA-Z0-9_ \t]*=[ \t]*['"](?P<value>{P}+)['"]`,
			`[a-zA-Z0-9_ \t]*{K}[a-zA-Z0-9_ \t]*:[ \t]*['"](?P<value>{P}+)['"]`,
		},
		literal: []string{`['"].*{V}.*['"]`},
	},
	{
		class:     ClassJSON,
		normalize: normalizeJSON,
		assign: []string{
			`[a-zA-Z0-9_]*{K}[a-zA-Z0-9_ \t'"]*[=:][ \t]*['"](?P<value>{P}+)['"]`,
		},
		literal: []string{`.*['"].*{V}.*['"].*`},
	},
	{
		class: ClassXML,
		assign: []string{
			`<.*{K}.*>(?P<value>{P}+)</.*{K}.*>`,
			`.*{K}[a-zA-Z_\-]*="(?P<value>{P}+)"`,
		},
		literal: []string{
			`[a-zA-Z0-9\-_ \t]*>[a-zA-Z0-9\-_/:]*{V}[a-zA-Z0-9\-_/:]*<`,
			`[a-zA-Z0-9\-_]="[a-zA-Z0-9\-_/:]*{V}[a-zA-Z0-9\-_/:]*"`,
		},
	},
	{
		class: ClassKeyValue,
		assign: []string{
			`.*{K}.*=[ \t]*(?P<value>{P}+)`,
		},
		literal: []string{`=[ \t]*.*{V}.*`},
	},
}
