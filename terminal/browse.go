package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"resale-explorer/models"
)

// ErrNotTerminal is returned by Browse when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("terminal: stdin is not a terminal")

// Key is a decoded keystroke.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyEsc
	KeyQuit
)

// Browse shows recs as a selectable list on a raw-mode terminal. Arrow keys
// move the cursor, Enter opens the row's details, Esc or Ctrl-C leaves.
func Browse(in *os.File, out io.Writer, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal: raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return Run(in, out, recs)
}

// Run drives the list against any reader. It returns when the user quits or
// in reaches EOF.
func Run(in io.Reader, out io.Writer, recs []models.Recommendation) error {
	reader := bufio.NewReader(in)
	v := NewView(recs)
	w := &crlfWriter{w: out}

	v.Render(w)
	for {
		k, err := ReadKey(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if v.Handle(k) {
			fmt.Fprint(w, "\n")
			return nil
		}
		v.Render(w)
	}
}

// ReadKey decodes one keystroke, including ANSI and Windows console arrow
// sequences. A lone ESC with nothing buffered behind it is KeyEsc.
func ReadKey(r *bufio.Reader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return KeyOther, err
	}

	switch b {
	case 0, 224:
		b2, err := r.ReadByte()
		if err != nil {
			return KeyOther, err
		}
		switch b2 {
		case 72:
			return KeyUp, nil
		case 80:
			return KeyDown, nil
		case 13:
			return KeyEnter, nil
		}
		return KeyOther, nil
	case 27:
		if r.Buffered() == 0 {
			return KeyEsc, nil
		}
		if b2, _ := r.ReadByte(); b2 != '[' || r.Buffered() == 0 {
			return KeyOther, nil
		}
		b3, _ := r.ReadByte()
		switch b3 {
		case 'A':
			return KeyUp, nil
		case 'B':
			return KeyDown, nil
		}
		return KeyOther, nil
	case '\r', '\n':
		return KeyEnter, nil
	case 'k':
		return KeyUp, nil
	case 'j':
		return KeyDown, nil
	case 3, 'q':
		return KeyQuit, nil
	}
	return KeyOther, nil
}

// View is the list/detail state machine behind Browse.
type View struct {
	recs     []models.Recommendation
	selected int
	detail   bool
}

func NewView(recs []models.Recommendation) *View {
	return &View{recs: recs}
}

// Selected returns the index of the highlighted row.
func (v *View) Selected() int { return v.selected }

// Detail reports whether the detail pane is open.
func (v *View) Detail() bool { return v.detail }

// Handle applies k and reports whether the browser should exit. In the
// detail pane any key but Ctrl-C returns to the list.
func (v *View) Handle(k Key) bool {
	if k == KeyQuit {
		return true
	}
	if v.detail {
		v.detail = false
		return false
	}

	switch k {
	case KeyUp:
		if v.selected > 0 {
			v.selected--
		}
	case KeyDown:
		if v.selected < len(v.recs)-1 {
			v.selected++
		}
	case KeyEnter:
		v.detail = true
	case KeyEsc:
		return true
	}
	return false
}

// Render clears the screen and draws the current state.
func (v *View) Render(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
	if v.detail {
		v.renderDetail(w, v.recs[v.selected])
		return
	}

	fmt.Fprintf(w, "\033[1;33mTop %d Recommended Flats\033[0m\n\n", len(v.recs))
	for i, r := range v.recs {
		prefix := "  "
		if i == v.selected {
			prefix = "\033[7m> "
		}
		fmt.Fprintf(w, "%s%2d. %s  %-5s %-24s %-9s %-8s %3d\033[0m\n",
			prefix, r.Rank, r.Month, r.Block, r.StreetName, r.StoreyRange, r.Price, r.Score)
	}
	fmt.Fprint(w, "\n(↑/↓ to navigate, Enter to view details, Esc to quit)\n")
}

func (v *View) renderDetail(w io.Writer, r models.Recommendation) {
	fmt.Fprintf(w, "\033[1;33m#%d  Blk %s %s\033[0m\n\n", r.Rank, r.Block, r.StreetName)
	fields := []struct{ label, value string }{
		{"Town", r.Town},
		{"Flat type", r.FlatType},
		{"Flat model", r.FlatModel},
		{"Month", r.Month},
		{"Storey", r.StoreyRange},
		{"Floor area", fmt.Sprintf("%g sqm", r.FloorAreaSqm)},
		{"Lease from", fmt.Sprintf("%d", r.LeaseCommenceDate)},
		{"Remaining", r.RemainingLease},
		{"Price", fmt.Sprintf("%s ($%.0f)", r.Price, r.ResalePrice)},
		{"Score", fmt.Sprintf("%d (%s)", r.Score, r.Band)},
		{"Why", r.Rationale},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "  %-11s: %s\n", f.label, f.value)
	}
	fmt.Fprint(w, "\n(any key to return, Ctrl-C to quit)\n")
}

// crlfWriter turns \n into \r\n, which raw mode no longer does for us.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, strings.ReplaceAll(string(p), "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
