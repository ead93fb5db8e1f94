package release

import (
	"fmt"
	"os"
	"strings"
)

// Fixup names referenced by catalog records.
const (
	// FixupInfXSS skips ACE files carrying 'Inf' values in the XSS array,
	// a known defect of FENDL-3.0 (K-39).
	FixupInfXSS = "inf-xss"
	// FixupCENDLTi47 and FixupCENDLB10 patch lines containing non-ASCII
	// bytes in two CENDL-3.1 evaluations.
	FixupCENDLTi47 = "cendl31-ti47"
	FixupCENDLB10  = "cendl31-b10"
)

// Verdict is a fixup's decision about one data file.
type Verdict struct {
	// Skip excludes the file from conversion entirely.
	Skip bool
	// Warning is collected and reported at the end of the run.
	Warning string
}

// Fixup inspects and possibly rewrites one data file before conversion.
type Fixup func(path string) (Verdict, error)

var fixups = map[string]Fixup{
	FixupInfXSS:    fixupInfXSS,
	FixupCENDLTi47: cendlLinePatch(205, " 8) YUAN Junqian,WANG Yongchang,etc.               ,16,(1),57,92012228 1451  205"),
	FixupCENDLB10:  cendlLinePatch(203, "21)   Day R.B. and Walt M.  Phys.rev.117,1330 (1960)               525 1451  203"),
}

// GetFixup resolves a fixup by its catalog name.
func GetFixup(name string) (Fixup, bool) {
	f, ok := fixups[name]
	return f, ok
}

func fixupInfXSS(path string) (Verdict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Verdict{}, err
	}
	if strings.Contains(string(data), "Inf") {
		return Verdict{
			Skip: true,
			Warning: fmt.Sprintf("%s contains 'Inf' values within the XSS array which prevent "+
				"conversion; the file has not been added to the cross section library", path),
		}, nil
	}
	return Verdict{}, nil
}

// cendlLinePatch replaces one line (0-based index) of a CRLF-delimited ENDF
// file, dropping any non-ASCII bytes the release shipped with.
func cendlLinePatch(lineNo int, replacement string) Fixup {
	return func(path string) (Verdict, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Verdict{}, err
		}
		clean := make([]byte, 0, len(raw))
		for _, b := range raw {
			if b < 0x80 {
				clean = append(clean, b)
			}
		}
		lines := strings.Split(string(clean), "\r\n")
		if lineNo >= len(lines) {
			return Verdict{}, fmt.Errorf("cannot patch %s: file has only %d lines", path, len(lines))
		}
		if lines[lineNo] == replacement {
			return Verdict{}, nil
		}
		lines[lineNo] = replacement
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\r\n")), 0644); err != nil {
			return Verdict{}, err
		}
		return Verdict{}, nil
	}
}

// FixupNFYTPID names the TPID prepend for the JEFF-3.3 fission yield tape.
const FixupNFYTPID = "jeff33-nfy-tpid"

// TapeFixup repairs a downloaded evaluation tape before parsing, returning
// the path the parser should read. Unlike Fixup it may leave the original
// untouched and hand back a corrected copy.
type TapeFixup func(path string) (string, error)

var tapeFixups = map[string]TapeFixup{
	FixupNFYTPID: FixJEFF33NFY,
}

// GetTapeFixup resolves a tape fixup by its catalog name.
func GetTapeFixup(name string) (TapeFixup, bool) {
	f, ok := tapeFixups[name]
	return f, ok
}

// FixJEFF33NFY prepends the TPID line missing from the JEFF-3.3 fission
// yield tape. The fixed copy is written next to the original with a
// "_fixed" suffix and its path returned; an existing fixed copy is reused.
func FixJEFF33NFY(path string) (string, error) {
	fixed := path + "_fixed"
	if _, err := os.Stat(fixed); err == nil {
		return fixed, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tpid := strings.Repeat(" ", 66) + "   1 0  0    0\n"
	if err := os.WriteFile(fixed, append([]byte(tpid), data...), 0644); err != nil {
		return "", err
	}
	return fixed, nil
}
