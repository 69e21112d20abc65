// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"WORD_MAX":      fmt.Sprintf("%d", WORD_MAX),
	"REGISTER_BASE": fmt.Sprintf("%d", REGISTER_BASE),
}

// Assembler is a single pass assembler for the synacor instruction set.
//
// Each line holds one instruction: a mnemonic followed by space separated
// operands. An operand is a decimal literal (0-32767) or a register name
// ('a'-'h'). As extensions, ';' starts a comment, 'c' is a character
// literal, $(...) is a compile-time expression, '.equ NAME VALUE' defines an
// equate, and '.word' emits raw words.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate, for all
// subsequent calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reEquate    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// registerOf returns the operand encoding of a register name.
func registerOf(word string) (operand Word, ok bool) {
	if len(word) != 1 || word[0] < 'a' || word[0] > 'h' {
		return
	}

	operand = MakeRegister(int(word[0] - 'a'))
	ok = true
	return
}

// valueOf returns the operand encoding of a word, where limit is the
// largest permitted literal.
func (asm *Assembler) valueOf(word string, limit Word) (value Word, err error) {
	value, ok := registerOf(word)
	if ok {
		return
	}

	v64, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			err = ErrValueRange(word)
		} else {
			err = ErrParseValue(word)
		}
		return
	}

	if v64 < 0 || v64 > int64(limit) {
		err = ErrValueRange(word)
		return
	}

	value = Word(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 10, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrValueRange(expr)
		return
	}
	return
}

// parseLine expands a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%d", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "s":
				str = " "
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%d", str[0])
	})

	// Strip comments
	line, _, _ = strings.Cut(line, ";")

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reEquate.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, is_reg := registerOf(words[1])
		if is_reg {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// currentAddress gets the address of the next generated word.
func (asm *Assembler) currentAddress() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := &asm.Statement[len(asm.Statement)-1]

	return last.Address + last.Len()
}

// Parse parses an input stream into a Program. Any error rejects the entire
// source.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Statement = asm.Statement[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	st := Statement{
		LineNo:  lineno,
		Address: asm.currentAddress(),
		Words:   words,
	}

	if words[0] == ".word" {
		if len(words) < 2 {
			err = ErrOpcodeMissing
			return
		}
		for _, word := range words[1:] {
			var value Word
			value, err = asm.valueOf(word, OPERAND_MAX)
			if err != nil {
				return
			}
			st.Data = append(st.Data, value)
		}
	} else {
		op, ok := ParseOpcode(words[0])
		if !ok {
			err = ErrOpcodeInvalid
			return
		}

		args := words[1:]
		if len(args) != op.Arity() {
			err = ErrArgCount{Opcode: op, Expected: op.Arity(), Actual: len(args)}
			return
		}

		var operands []Word
		for _, arg := range args {
			var value Word
			value, err = asm.valueOf(arg, WORD_MAX)
			if err != nil {
				return
			}
			operands = append(operands, value)
		}

		if op.Target() && !operands[0].IsRegister() {
			err = ErrInvalidRegister
			return
		}

		st.Codes = []Code{MakeCode(op, operands...)}
	}

	if st.Address+st.Len() > WORD_MODULUS {
		err = ErrAddressBounds
		return
	}

	asm.Statement = append(asm.Statement, st)

	return
}
