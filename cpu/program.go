package cpu

// Statement is a line of assembled source with its location and the words
// it generated.
type Statement struct {
	LineNo  int      // Source line number.
	Address int      // Address of the first generated word.
	Words   []string // Source words, after substitutions.
	Codes   []Code   // Generated instruction, if any.
	Data    []Word   // Generated raw words, from .word
}

// Len returns the number of memory words generated by the statement.
func (st *Statement) Len() (count int) {
	for _, code := range st.Codes {
		count += code.Len()
	}
	count += len(st.Data)
	return
}

type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int // Word offset of the address within the statement.
}

// Debug finds the statement that generated address.
func (prog *Program) Debug(address Word) (dbg Debug) {
	for n, st := range prog.Statements {
		if int(address) >= st.Address && int(address) < st.Address+st.Len() {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address) - st.Address,
			}
			break
		}
	}

	return
}

// Binary returns the flat word image of the program.
func (prog *Program) Binary() (words []Word) {
	for _, st := range prog.Statements {
		for _, code := range st.Codes {
			words = append(words, code.Words()...)
		}
		words = append(words, st.Data...)
	}

	return
}

// Memory returns a new memory loaded with the program.
func (prog *Program) Memory() (*Memory, error) {
	return NewMemory(prog.Binary())
}
