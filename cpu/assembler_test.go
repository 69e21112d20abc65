package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doParse(t *testing.T, asm *Assembler, program ...string) (prog *Program) {
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Equal(0, len(prog.Binary()))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("32767", asm.Equate["WORD_MAX"])
	assert.Equal("32768", asm.Equate["REGISTER_BASE"])
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		"out 65",
		"out a",
		"add a b 4",
		"halt",
	)

	assert.Equal([]Word{19, 65, 19, 32768, 9, 32768, 32769, 4, 0}, prog.Binary())

	expected := []Statement{
		{1, 0, []string{"out", "65"}, []Code{MakeCode(OP_OUT, 65)}, nil},
		{2, 2, []string{"out", "a"}, []Code{MakeCode(OP_OUT, A)}, nil},
		{3, 4, []string{"add", "a", "b", "4"}, []Code{MakeCode(OP_ADD, A, B, 4)}, nil},
		{4, 8, []string{"halt"}, []Code{MakeCode(OP_HALT)}, nil},
	}
	assert.Equal(expected, prog.Statements)
}

func TestAssemblerEveryOpcode(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	for op := range Opcode(OP_COUNT) {
		line := op.String() + strings.Repeat(" h", op.Arity())
		prog := doParse(t, asm, line)

		expected := []Word{Word(op)}
		for range op.Arity() {
			expected = append(expected, MakeRegister(7))
		}
		assert.Equal(expected, prog.Binary(), line)
	}
}

func TestAssemblerComments(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		"; Header comment",
		"",
		"   ",
		"noop ; trailing comment",
		"\tout\t';'\t; character literal, not a comment",
	)

	assert.Equal([]Word{21, 19, ';'}, prog.Binary())
	assert.Equal(2, len(prog.Statements))
	assert.Equal(4, prog.Statements[0].LineNo)
	assert.Equal(5, prog.Statements[1].LineNo)
	assert.Equal(1, prog.Statements[1].Address)
}

func TestAssemblerCharacters(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		"out 'A'",
		`out '\n'`,
		`out '\s'`,
		`out '\t'`,
		`out '\\'`,
		"eq a 'x' 'y'",
	)

	assert.Equal([]Word{
		19, 'A',
		19, '\n',
		19, ' ',
		19, '\t',
		19, '\\',
		4, A, 'x', 'y',
	}, prog.Binary())
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		".equ CH 72",
		".equ COUNTER c",
		"out CH",
		"set COUNTER CH",
		"add COUNTER COUNTER WORD_MAX",
	)

	assert.Equal([]Word{19, 72, 1, C, 72, 9, C, C, 32767}, prog.Binary())
	assert.Equal([]string{"out", "72"}, prog.Statements[0].Words)
	assert.Equal(3, prog.Statements[0].LineNo)

	// Equates do not leak into the next Parse.
	_, err := asm.Parse(strings.NewReader("out CH"))
	assert.ErrorIs(err, ErrParseValue("CH"))
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		".equ BASE 10",
		"out $(BASE * 6 + 5)",
		"out $(LINENO)",
		"out $(WORD_MAX - 1)",
		"out $(BASE * 2 if BASE > 5 else 0)",
		"set a $(0x7fff & ~1)",
	)

	assert.Equal([]Word{19, 65, 19, 3, 19, 32766, 19, 20, 1, A, 32766}, prog.Binary())
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("GREETING", "33")
	asm.Predefine("OUTPUT", "b")
	asm.Predefine("GREETING", "34")

	prog := doParse(t, asm, "out GREETING", "in OUTPUT", "out $(GREETING + 1)")
	assert.Equal([]Word{19, 34, 20, B, 19, 35}, prog.Binary())

	// Predefines persist across Parse calls.
	prog = doParse(t, asm, "out GREETING")
	assert.Equal([]Word{19, 34}, prog.Binary())

	_, err := asm.Parse(strings.NewReader(".equ GREETING 1"))
	assert.ErrorIs(err, ErrEquateDuplicate)
}

func TestAssemblerWord(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := doParse(t, asm,
		"jmp 4",
		".word 1 2 a",
		".word 32775 'z'",
		"halt",
	)

	assert.Equal([]Word{6, 4, 1, 2, 32768, 32775, 'z', 0}, prog.Binary())
	assert.Equal([]Word{1, 2, A}, prog.Statements[1].Data)
	assert.Nil(prog.Statements[1].Codes)
	assert.Equal(5, prog.Statements[2].Address)

	mem, err := prog.Memory()
	assert.NoError(err)
	assert.Equal(8, mem.Len())
}

func TestAssemblerReuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	first := doParse(t, asm, "out 1", "out 2")
	second := doParse(t, asm, "halt")

	assert.Equal([]Word{19, 1, 19, 2}, first.Binary())
	assert.Equal([]Word{0}, second.Binary())
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		err  error
	}){
		{"jump 1", 1, ErrOpcodeInvalid},
		{"noop\nHALT", 2, ErrOpcodeInvalid},
		{"halt 1", 1, nil},
		{"add a b", 1, nil},
		{"out", 1, nil},
		{"out x", 1, ErrParseValue("x")},
		{"out i", 1, ErrParseValue("i")},
		{"out 0x10", 1, ErrParseValue("0x10")},
		{"out 32768", 1, ErrValueRange("32768")},
		{"out -1", 1, ErrValueRange("-1")},
		{"out 99999999999999999999", 1, ErrValueRange("99999999999999999999")},
		{`out $("aaa")`, 1, ErrParseExpression(`"aaa"`)},
		{"out $(nope)", 1, ErrParseExpression("nope")},
		{"out $(1 << 70)", 1, ErrValueRange("1 << 70")},
		{".equ", 1, ErrEquateSyntax},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1 2", 1, ErrEquateSyntax},
		{".equ 1A 2", 1, ErrEquateSyntax},
		{".equ a 1", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{".equ LINENO 5", 1, ErrEquateDuplicate},
		{".word", 1, ErrOpcodeMissing},
		{".word 32776", 1, ErrValueRange("32776")},
		{"set 5 5", 1, ErrInvalidRegister},
		{"noop\nin 'a'", 2, ErrInvalidRegister},
		{"add $(1) a b", 1, ErrInvalidRegister},
		{"rmem 100 a", 1, ErrInvalidRegister},
		{"noop\n\n.word 1 nope", 3, ErrParseValue("nope")},
	}

	for _, entry := range table {
		prog, err := asm.Parse(strings.NewReader(entry.prog))
		assert.Nil(prog, entry.prog)
		if !assert.Error(err, entry.prog) {
			continue
		}

		var se *ErrSyntax
		if assert.True(errors.As(err, &se), entry.prog) {
			assert.Equal(entry.line, se.LineNo, entry.prog)
			assert.Equal(strings.Split(entry.prog, "\n")[entry.line-1], se.Line, entry.prog)
		}

		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.prog)
		} else {
			var ac ErrArgCount
			assert.True(errors.As(err, &ac), entry.prog)
		}
	}
}

func TestAssemblerErrArgCount(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("noop\nadd a b"))

	var ac ErrArgCount
	assert.True(errors.As(err, &ac))
	assert.Equal(ErrArgCount{Opcode: OP_ADD, Expected: 3, Actual: 2}, ac)
	assert.Contains(err.Error(), "'add' expects 3 arguments, not 2")
	assert.Contains(err.Error(), "line 2")
}

func TestAssemblerErrAddressBounds(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	full := strings.Repeat("noop\n", WORD_MODULUS)
	prog, err := asm.Parse(strings.NewReader(full))
	assert.NoError(err)
	assert.Equal(WORD_MODULUS, len(prog.Binary()))

	_, err = asm.Parse(strings.NewReader(full + "noop\n"))
	assert.ErrorIs(err, ErrAddressBounds)

	var se *ErrSyntax
	assert.True(errors.As(err, &se))
	assert.Equal(WORD_MODULUS+1, se.LineNo)
}
