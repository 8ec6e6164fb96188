// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package highlight

// Patterns shared by several languages.
const (
	slashComment = `//[^\n]*`
	blockComment = `(?s:/\*.*?\*/)`
	hashComment  = `#[^\n]*`
	dqString     = `"(?:[^"\\\n]|\\.)*"`
	sqString     = `'(?:[^'\\\n]|\\.)*'`
	charLiteral  = `'(?:[^'\\\n]|\\.)'`
	templateStr  = "`(?:[^`\\\\]|\\\\.)*`"
	rawString    = "`[^`]*`"
	number       = `\b(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|\d[\d_]*(?:\.\d[\d_]*)?(?:[eE][+-]?\d+)?)[a-zA-Z]*\b`
)

// cLike builds a lexer for a language with C-style comments.
// Empty word lists are skipped.
func cLike(stringRules []Rule, keywords, literals, types, builtins string, extra ...[]Rule) *Lexer {
	lexical := []Rule{
		{Class: Comment, Pattern: slashComment},
		{Class: Comment, Pattern: blockComment},
	}
	lexical = append(lexical, stringRules...)
	passes := [][]Rule{
		lexical,
		{{Class: Number, Pattern: number}},
		{words(Keyword, keywords)},
	}
	if literals != "" {
		passes = append(passes, []Rule{words(Literal, literals)})
	}
	if types != "" {
		passes = append(passes, []Rule{words(Type, types)})
	}
	if builtins != "" {
		passes = append(passes, []Rule{words(Builtin, builtins)})
	}
	passes = append(passes, extra...)
	return MustLexer(passes...)
}

var cStrings = []Rule{
	{Class: String, Pattern: dqString},
	{Class: String, Pattern: charLiteral},
}

const (
	jsKeywords = `function const let var if else for while do switch case default break continue return ` +
		`class import export from async await try catch finally throw new this super extends ` +
		`implements interface type enum namespace module declare public private protected static ` +
		`readonly abstract override typeof instanceof in of delete void yield get set`
	jsLiterals = `true false null undefined NaN Infinity`
	jsBuiltins = `console document window navigator localStorage sessionStorage JSON Math Date ` +
		`Array Object String Number Boolean Promise Map Set RegExp Error Symbol fetch XMLHttpRequest`
	tsKeywords = jsKeywords + ` as is keyof satisfies infer asserts unique`
	tsTypes    = `any unknown never string number boolean object bigint symbol`
)

func javaScriptLexer(types string) *Lexer {
	return cLike(
		[]Rule{
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
			{Class: String, Pattern: templateStr},
		},
		jsKeywords, jsLiterals, types, jsBuiltins,
	)
}

func typeScriptLexer() *Lexer {
	return cLike(
		[]Rule{
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
			{Class: String, Pattern: templateStr},
		},
		tsKeywords, jsLiterals, tsTypes, jsBuiltins,
	)
}

func pythonLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: hashComment},
			{Class: String, Pattern: `(?s:[rRbBuUfF]{0,2}""".*?""")`},
			{Class: String, Pattern: `(?s:[rRbBuUfF]{0,2}'''.*?''')`},
			{Class: String, Pattern: `[rRbBuUfF]{0,2}` + dqString},
			{Class: String, Pattern: `[rRbBuUfF]{0,2}` + sqString},
		},
		[]Rule{{Class: Number, Pattern: number}},
		[]Rule{words(Keyword, `and as assert async await break class continue def del elif else except `+
			`finally for from global if import in is lambda nonlocal not or pass raise return try `+
			`while with yield match case`)},
		[]Rule{words(Literal, `True False None`)},
		[]Rule{words(Builtin, `print len range int str float bool list dict set tuple open type `+
			`isinstance enumerate zip map filter sorted reversed sum min max abs round super `+
			`input format repr iter next any all hasattr getattr setattr self cls`)},
		[]Rule{{Class: Builtin, Pattern: `@[A-Za-z_][\w.]*`}},
	)
}

func markupLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: `(?s:<!--.*?-->)`},
			{Class: Keyword, Pattern: `(?i)<!doctype[^>]*>`},
			{Class: Keyword, Pattern: `(?s:<\?.*?\?>)`},
			{Class: String, Pattern: `(?s:<!\[CDATA\[.*?\]\]>)`},
		},
		[]Rule{
			{Class: String, Pattern: `=[ \t]*("[^"]*")`, Group: 1},
			{Class: String, Pattern: `=[ \t]*('[^']*')`, Group: 1},
		},
		[]Rule{
			{Class: Tag, Pattern: `</?([A-Za-z][\w:.-]*)`, Group: 1},
			{Class: Attribute, Pattern: `([A-Za-z_:@][\w:.-]*)[ \t]*=`, Group: 1},
		},
	)
}

func cssPasses(lineComments bool) [][]Rule {
	lexical := []Rule{
		{Class: Comment, Pattern: blockComment},
		{Class: String, Pattern: dqString},
		{Class: String, Pattern: sqString},
	}
	if lineComments {
		lexical = append(lexical, Rule{Class: Comment, Pattern: slashComment})
	}
	return [][]Rule{
		lexical,
		{
			{Class: AtRule, Pattern: `@[\w-]+`},
			{Class: Variable, Pattern: `\$[\w-]+`},
			{Class: Variable, Pattern: `--[\w-]+`},
		},
		{{Class: Selector, Pattern: `(?m)^[ \t]*([^\s{};@][^{};\n]*?)[ \t]*\{`, Group: 1}},
		{{Class: Property, Pattern: `([A-Za-z-][\w-]*)[ \t]*:`, Group: 1}},
		{
			{Class: Number, Pattern: `#[0-9a-fA-F]{3,8}\b`},
			{Class: Number, Pattern: `\b\d+(?:\.\d+)?(?:px|em|rem|vh|vw|vmin|vmax|ms|s|deg|fr|pt|ch|ex|%)?`},
		},
		{{Class: Keyword, Pattern: `!important\b`}},
	}
}

func jsonLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Key, Pattern: `(` + dqString + `)[ \t]*:`, Group: 1},
			{Class: String, Pattern: dqString},
		},
		[]Rule{{Class: Number, Pattern: `-?\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`}},
		[]Rule{words(Literal, `true false null`)},
	)
}

func sqlLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: `--[^\n]*`},
			{Class: Comment, Pattern: blockComment},
			{Class: String, Pattern: `'(?:[^']|'')*'`},
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: rawString},
		},
		[]Rule{{Class: Number, Pattern: `\b\d+(?:\.\d+)?\b`}},
		[]Rule{foldWords(Keyword, `SELECT FROM WHERE INSERT INTO VALUES UPDATE SET DELETE CREATE DROP ALTER `+
			`TABLE DATABASE INDEX VIEW JOIN LEFT RIGHT INNER OUTER FULL CROSS ON GROUP BY ORDER HAVING `+
			`UNION ALL DISTINCT LIMIT OFFSET CASE WHEN THEN ELSE END IF EXISTS IN NOT AND OR AS IS `+
			`BETWEEN LIKE REGEXP MATCH AGAINST PRIMARY KEY FOREIGN REFERENCES DEFAULT CONSTRAINT `+
			`UNIQUE CHECK WITH ASC DESC RETURNING BEGIN COMMIT ROLLBACK TRANSACTION`)},
		[]Rule{foldWords(Literal, `NULL TRUE FALSE`)},
		[]Rule{foldWords(Type, `INT INTEGER BIGINT SMALLINT TINYINT SERIAL VARCHAR CHAR TEXT BOOLEAN BOOL `+
			`DATE TIME TIMESTAMP DATETIME DECIMAL NUMERIC FLOAT REAL DOUBLE UUID JSON JSONB BLOB`)},
		[]Rule{foldWords(Builtin, `COUNT SUM AVG MIN MAX COALESCE NULLIF NOW CAST LOWER UPPER LENGTH `+
			`SUBSTRING TRIM ROUND CONCAT`)},
	)
}

func shellLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: `(?m)(?:^|[ \t;])(#[^\n]*)`, Group: 1},
			{Class: String, Pattern: `"(?:[^"\\]|\\.)*"`},
			{Class: String, Pattern: `'[^']*'`},
		},
		[]Rule{{Class: Variable, Pattern: `\$(?:\{[^}\n]*\}|[A-Za-z_]\w*|[0-9#?@*!$-])`}},
		[]Rule{{Class: Number, Pattern: `\b\d+\b`}},
		[]Rule{words(Keyword, `if then else elif fi for while until do done case esac function return `+
			`local export readonly declare typeset in select time`)},
		[]Rule{words(Builtin, `alias unalias set unset shift getopts trap exit break continue exec eval `+
			`source cd pwd echo printf read test ls cat grep sed awk cut sort uniq head tail wc find `+
			`xargs chmod chown mkdir rmdir rm cp mv ln tar gzip gunzip zip unzip wget curl ssh scp `+
			`rsync git sudo apt brew npm npx yarn pip go docker kubectl make`)},
	)
}

func phpLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: slashComment},
			{Class: Comment, Pattern: `#(?:[^\n\[][^\n]*)?`},
			{Class: Comment, Pattern: blockComment},
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
		},
		[]Rule{{Class: Tag, Pattern: `<\?(?:php|=)?|\?>`}},
		[]Rule{{Class: Variable, Pattern: `\$[A-Za-z_]\w*`}},
		[]Rule{{Class: Number, Pattern: number}},
		[]Rule{words(Keyword, `function class interface trait namespace use as public private protected `+
			`static abstract final const var if else elseif endif for foreach endforeach while do `+
			`switch case default break continue return try catch finally throw new clone instanceof `+
			`and or xor match fn enum readonly extends implements`)},
		[]Rule{foldWords(Literal, `true false null`)},
		[]Rule{words(Builtin, `array list isset empty unset echo print include require include_once `+
			`require_once __construct __destruct __get __set __isset __unset __call __callStatic `+
			`__toString __invoke __clone self parent`)},
	)
}

func rubyLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: `(?ms:^=begin.*?^=end)`},
			{Class: Comment, Pattern: hashComment},
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
		},
		[]Rule{
			{Class: InstanceVariable, Pattern: `@@?[A-Za-z_]\w*`},
			{Class: Variable, Pattern: `\$[A-Za-z_]\w*`},
			{Class: Literal, Pattern: `(?:^|[^:\w]):([A-Za-z_]\w*[?!]?)`, Group: 1},
		},
		[]Rule{{Class: Number, Pattern: number}},
		[]Rule{words(Keyword, `alias and begin break case class def defined do else elsif end ensure for `+
			`if in module next not or redo rescue retry return self super then undef unless until `+
			`when while yield`)},
		[]Rule{words(Literal, `true false nil`)},
		[]Rule{words(Builtin, `puts print p require require_relative attr_accessor attr_reader `+
			`attr_writer include extend raise lambda proc loop`)},
	)
}

func yamlLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Comment, Pattern: `(?m)(?:^|[ \t])(#[^\n]*)`, Group: 1},
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
			{Class: Key, Pattern: `(?m)^[ \t]*(?:- +)?([A-Za-z_][\w.-]*)[ \t]*:`, Group: 1},
		},
		[]Rule{{Class: Number, Pattern: `-?\b\d+(?:\.\d+)?\b`}},
		[]Rule{
			foldWords(Literal, `true false null yes no on off`),
			{Class: Literal, Pattern: `~`},
		},
	)
}

func markdownLexer() *Lexer {
	return MustLexer(
		[]Rule{
			{Class: Code, Pattern: "(?s:```.*?```)"},
			{Class: Code, Pattern: "`[^`\\n]+`"},
			{Class: Heading, Pattern: `(?m)^#{1,6}[ \t][^\n]*`},
		},
		[]Rule{{Class: ListItem, Pattern: `(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]`}},
		[]Rule{{Class: Link, Pattern: `!?\[[^\]\n]*\]\([^)\n]*\)`}},
		[]Rule{
			{Class: Strong, Pattern: `\*\*[^*\n]+\*\*`},
			{Class: Strong, Pattern: `__[^_\n]+__`},
		},
		[]Rule{
			{Class: Emphasis, Pattern: `\*[^*\n]+\*`},
			{Class: Emphasis, Pattern: `\b_[^_\n]+_\b`},
		},
	)
}

func registerBuiltins(r *Registry) {
	r.Register(javaScriptLexer(""), "javascript", "js", "jsx", "mjs", "cjs", "node")
	r.Register(typeScriptLexer(), "typescript", "ts", "tsx")
	r.Register(pythonLexer(), "python", "py", "python3")
	r.Register(markupLexer(), "html", "htm", "xhtml", "xml", "svg", "vue")
	r.Register(MustLexer(cssPasses(false)...), "css")
	r.Register(MustLexer(cssPasses(true)...), "scss", "sass", "less")
	r.Register(jsonLexer(), "json", "jsonc")
	r.Register(sqlLexer(), "sql", "mysql", "postgresql", "postgres", "sqlite")
	r.Register(shellLexer(), "bash", "shell", "sh", "zsh", "console")
	r.Register(phpLexer(), "php")
	r.Register(cLike(cStrings,
		`public private protected static final abstract native synchronized transient volatile `+
			`strictfp package import class interface enum record extends implements throws throw try `+
			`catch finally if else switch case default for while do break continue return new this `+
			`super instanceof assert const goto`,
		`true false null`,
		`boolean byte char short int long float double void var String Object Integer Long Double `+
			`Boolean List Map Set ArrayList HashMap`,
		`System Math Arrays Collections Optional`,
		[]Rule{{Class: Builtin, Pattern: `@[A-Za-z_]\w*`}},
	), "java")
	cpp := cLike(append([]Rule{{Class: Keyword, Pattern: `(?m)^[ \t]*#[ \t]*[a-z]+`}}, cStrings...),
		`asm break case catch class const const_cast constexpr continue default delete do `+
			`dynamic_cast else enum explicit export extern for friend goto if inline mutable namespace `+
			`new noexcept operator private protected public register reinterpret_cast return sizeof `+
			`static static_assert static_cast struct switch template this throw try typedef typeid `+
			`typename union using virtual volatile while`,
		`true false nullptr NULL`,
		`auto bool char char16_t char32_t double float int long short signed unsigned void wchar_t `+
			`size_t int8_t int16_t int32_t int64_t uint8_t uint16_t uint32_t uint64_t`,
		`std printf scanf malloc free cout cin cerr endl`,
	)
	r.Register(cpp, "cpp", "c++", "cc", "cxx", "hpp", "c", "h")
	r.Register(cLike(append([]Rule{{Class: String, Pattern: `@"(?:[^"]|"")*"`}}, cStrings...),
		`abstract as base break case catch checked class const continue default delegate do else `+
			`enum event explicit extern finally fixed for foreach goto if implicit in interface internal `+
			`is lock namespace new operator out override params private protected public readonly ref `+
			`return sealed sizeof stackalloc static struct switch this throw try typeof unchecked unsafe `+
			`using virtual volatile while yield async await record`,
		`true false null`,
		`bool byte char decimal double float int long object sbyte short string uint ulong ushort `+
			`void var dynamic`,
		`Console Math String List Dictionary Task`,
	), "csharp", "cs", "c#")
	r.Register(cLike(
		[]Rule{
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: charLiteral},
			{Class: String, Pattern: rawString},
		},
		`break case chan const continue default defer else fallthrough for func go goto if import `+
			`interface map package range return select struct switch type var`,
		`true false nil iota`,
		`bool byte complex64 complex128 error float32 float64 int int8 int16 int32 int64 rune string `+
			`uint uint8 uint16 uint32 uint64 uintptr any comparable`,
		`append cap clear close complex copy delete imag len make max min new panic print println `+
			`real recover`,
	), "go", "golang")
	r.Register(cLike(cStrings,
		`as async await break const continue crate dyn else enum extern fn for if impl in let loop `+
			`match mod move mut pub ref return self Self static struct super trait type union unsafe `+
			`use where while yield`,
		`true false None Some Ok Err`,
		`i8 i16 i32 i64 i128 isize u8 u16 u32 u64 u128 usize f32 f64 bool char str String Vec `+
			`Option Result Box`,
		"",
		[]Rule{{Class: Builtin, Pattern: `\b([a-z_][a-z0-9_]*!)[(\[{]`, Group: 1}},
	), "rust", "rs")
	r.Register(rubyLexer(), "ruby", "rb")
	r.Register(cLike(cStrings,
		`associatedtype class deinit enum extension fileprivate func import init inout internal let `+
			`open operator private protocol public static struct subscript typealias var break case `+
			`continue default defer do else fallthrough for guard if in repeat return switch where `+
			`while as catch is rethrows super self Self throw throws try async await final lazy `+
			`mutating override required weak unowned`,
		`true false nil`,
		`Int Double Float String Bool Character Array Dictionary Set Optional Any AnyObject Void`,
		`print`,
	), "swift")
	r.Register(cLike(
		[]Rule{
			{Class: String, Pattern: `(?s:""".*?""")`},
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: charLiteral},
		},
		`as break class continue do else for fun if in interface is object package return super `+
			`this throw try typealias val var when while by catch constructor finally get import init `+
			`set where abstract annotation companion data enum external final infix inline inner `+
			`internal lateinit noinline open operator out override private protected public reified `+
			`sealed suspend tailrec vararg const value`,
		`true false null`,
		`Int Long Short Byte Double Float String Boolean Char Unit Any Nothing List Map Set Array`,
		`println print listOf mapOf setOf mutableListOf mutableMapOf arrayOf`,
	), "kotlin", "kt", "kts")
	r.Register(cLike(
		[]Rule{
			{Class: String, Pattern: dqString},
			{Class: String, Pattern: sqString},
		},
		`abstract as assert async await break case catch class const continue covariant default `+
			`deferred do else enum export extends extension external factory final finally for get `+
			`hide if implements import in interface is late library mixin new on operator part `+
			`required rethrow return set show static super switch sync this throw try typedef var `+
			`while with yield`,
		`true false null`,
		`int double num String bool List Map Set Future Stream void dynamic Object Function`,
		`print`,
	), "dart")
	r.Register(yamlLexer(), "yaml", "yml")
	r.Register(markdownLexer(), "markdown", "md")
}
