// Package rcs parses the RCS ",v" file format into its admin block, delta
// records, description, and delta-text records, without interpreting the
// delta text itself (that's edscript's job).
package rcs

import (
	"fmt"
	"time"

	"github.com/cvsfastimport/cvsfastimport/revision"
)

// ParseError points at the first unmatched input; the parser does not
// attempt recovery.
type ParseError struct {
	Offset int
	Kind   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rcs: parse error at byte %d: %s", e.Offset, e.Kind)
}

// Admin is the header of a ,v file.
type Admin struct {
	Head      *revision.ID
	Branch    *revision.ID
	Access    []string
	Symbols   map[string]revision.ID
	Locks     map[string]revision.ID
	Strict    bool
	Integrity []byte
	Comment   []byte
	Expand    []byte
}

// Delta is one revision's metadata record.
type Delta struct {
	Date     time.Time
	Author   string
	State    string
	Branches []revision.ID
	Next     *revision.ID
	CommitID string
}

// DeltaText pairs a revision's log message with its raw text payload: the
// literal content for the head revision, or an ed script for every other
// revision. Callers interpret Text; this package only stores it.
type DeltaText struct {
	Log  []byte
	Text []byte
}

// File is the full parsed structure of a ,v file.
type File struct {
	Admin     Admin
	Delta     map[string]Delta
	Desc      []byte
	DeltaText map[string]DeltaText
}

var deltaFieldKeywords = map[string]bool{
	"date": true, "author": true, "state": true,
	"branches": true, "next": true, "commitid": true,
}

// Parse parses the full contents of a ,v file.
func Parse(data []byte) (*File, error) {
	s := &scanner{data: data}

	admin, err := parseAdmin(s)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]Delta)
	for {
		s.skipSpace()
		word, ok := s.peekIdent()
		if ok && word == "desc" {
			break
		}
		if s.eof() {
			break
		}
		id, delta, err := parseDelta(s)
		if err != nil {
			return nil, err
		}
		deltas[id.String()] = delta
	}

	desc, err := parseDesc(s)
	if err != nil {
		return nil, err
	}

	deltaTexts := make(map[string]DeltaText)
	for {
		s.skipSpace()
		if s.eof() {
			break
		}
		id, dt, err := parseDeltaText(s)
		if err != nil {
			return nil, err
		}
		deltaTexts[id.String()] = dt
	}

	return &File{Admin: *admin, Delta: deltas, Desc: desc, DeltaText: deltaTexts}, nil
}

func parseAdmin(s *scanner) (*Admin, error) {
	admin := &Admin{
		Symbols: make(map[string]revision.ID),
		Locks:   make(map[string]revision.ID),
	}
adminLoop:
	for {
		s.skipSpace()
		word, ok := s.peekIdent()
		if !ok {
			break
		}
		switch word {
		case "head":
			s.readIdent()
			s.skipSpace()
			if !s.eof() && s.data[s.pos] != ';' {
				id, err := readRevision(s)
				if err != nil {
					return nil, err
				}
				admin.Head = &id
			}
			if err := s.expect(';', "expected ';' after head"); err != nil {
				return nil, err
			}
		case "branch":
			s.readIdent()
			s.skipSpace()
			if !s.eof() && s.data[s.pos] != ';' {
				id, err := readRevision(s)
				if err != nil {
					return nil, err
				}
				admin.Branch = &id
			}
			if err := s.expect(';', "expected ';' after branch"); err != nil {
				return nil, err
			}
		case "access":
			s.readIdent()
			for {
				s.skipSpace()
				if s.eof() || s.data[s.pos] == ';' {
					break
				}
				id, _ := s.readIdent()
				admin.Access = append(admin.Access, id)
			}
			if err := s.expect(';', "expected ';' after access"); err != nil {
				return nil, err
			}
		case "symbols":
			s.readIdent()
			for {
				s.skipSpace()
				if s.eof() || s.data[s.pos] == ';' {
					break
				}
				name, _ := s.readIdent()
				if err := s.expect(':', "expected ':' in symbols"); err != nil {
					return nil, err
				}
				numText, _ := s.readNum()
				id, err := revision.Parse(numText)
				if err != nil {
					return nil, err
				}
				admin.Symbols[name] = id
			}
			if err := s.expect(';', "expected ';' after symbols"); err != nil {
				return nil, err
			}
		case "locks":
			s.readIdent()
			for {
				s.skipSpace()
				if s.eof() || s.data[s.pos] == ';' {
					break
				}
				name, _ := s.readIdent()
				if err := s.expect(':', "expected ':' in locks"); err != nil {
					return nil, err
				}
				numText, _ := s.readNum()
				id, err := revision.Parse(numText)
				if err != nil {
					return nil, err
				}
				admin.Locks[name] = id
			}
			if err := s.expect(';', "expected ';' after locks"); err != nil {
				return nil, err
			}
		case "strict":
			s.readIdent()
			admin.Strict = true
			if err := s.expect(';', "expected ';' after strict"); err != nil {
				return nil, err
			}
		case "comment":
			s.readIdent()
			comment, err := s.readQuoted()
			if err != nil {
				return nil, err
			}
			admin.Comment = comment
			if err := s.expect(';', "expected ';' after comment"); err != nil {
				return nil, err
			}
		case "expand":
			s.readIdent()
			expand, err := s.readQuoted()
			if err != nil {
				return nil, err
			}
			admin.Expand = expand
			if err := s.expect(';', "expected ';' after expand"); err != nil {
				return nil, err
			}
		case "integrity":
			s.readIdent()
			integrity, err := s.readQuoted()
			if err != nil {
				return nil, err
			}
			admin.Integrity = integrity
			if err := s.expect(';', "expected ';' after integrity"); err != nil {
				return nil, err
			}
		default:
			break adminLoop
		}
	}
	return admin, nil
}

func readRevision(s *scanner) (revision.ID, error) {
	text, ok := s.readNum()
	if !ok {
		return revision.ID{}, &ParseError{Offset: s.pos, Kind: "expected revision number"}
	}
	return revision.Parse(text)
}

func parseDelta(s *scanner) (revision.ID, Delta, error) {
	id, err := readRevision(s)
	if err != nil {
		return revision.ID{}, Delta{}, err
	}
	var delta Delta
deltaLoop:
	for {
		s.skipSpace()
		word, ok := s.peekIdent()
		if !ok || !deltaFieldKeywords[word] {
			break
		}
		switch word {
		case "date":
			s.readIdent()
			dateText, ok := s.readNum()
			if !ok {
				return revision.ID{}, Delta{}, &ParseError{Offset: s.pos, Kind: "expected date"}
			}
			t, err := ParseDate(dateText)
			if err != nil {
				return revision.ID{}, Delta{}, err
			}
			delta.Date = t
			if err := s.expect(';', "expected ';' after date"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		case "author":
			s.readIdent()
			author, _ := s.readIdent()
			delta.Author = author
			if err := s.expect(';', "expected ';' after author"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		case "state":
			s.readIdent()
			s.skipSpace()
			if !s.eof() && s.data[s.pos] != ';' {
				state, _ := s.readIdent()
				delta.State = state
			}
			if err := s.expect(';', "expected ';' after state"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		case "branches":
			s.readIdent()
			for {
				s.skipSpace()
				if s.eof() || s.data[s.pos] == ';' {
					break
				}
				branchID, err := readRevision(s)
				if err != nil {
					return revision.ID{}, Delta{}, err
				}
				delta.Branches = append(delta.Branches, branchID)
			}
			if err := s.expect(';', "expected ';' after branches"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		case "next":
			s.readIdent()
			s.skipSpace()
			if !s.eof() && s.data[s.pos] != ';' {
				nextID, err := readRevision(s)
				if err != nil {
					return revision.ID{}, Delta{}, err
				}
				delta.Next = &nextID
			}
			if err := s.expect(';', "expected ';' after next"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		case "commitid":
			s.readIdent()
			commitID, _ := s.readIdent()
			delta.CommitID = commitID
			if err := s.expect(';', "expected ';' after commitid"); err != nil {
				return revision.ID{}, Delta{}, err
			}
		default:
			break deltaLoop
		}
	}
	return id, delta, nil
}

func parseDesc(s *scanner) ([]byte, error) {
	s.skipSpace()
	word, ok := s.readIdent()
	if !ok || word != "desc" {
		return nil, &ParseError{Offset: s.pos, Kind: "expected 'desc'"}
	}
	return s.readQuoted()
}

func parseDeltaText(s *scanner) (revision.ID, DeltaText, error) {
	id, err := readRevision(s)
	if err != nil {
		return revision.ID{}, DeltaText{}, err
	}
	word, ok := s.readIdent()
	if !ok || word != "log" {
		return revision.ID{}, DeltaText{}, &ParseError{Offset: s.pos, Kind: "expected 'log'"}
	}
	log, err := s.readQuoted()
	if err != nil {
		return revision.ID{}, DeltaText{}, err
	}
	word, ok = s.readIdent()
	if !ok || word != "text" {
		return revision.ID{}, DeltaText{}, &ParseError{Offset: s.pos, Kind: "expected 'text'"}
	}
	text, err := s.readQuoted()
	if err != nil {
		return revision.ID{}, DeltaText{}, err
	}
	return id, DeltaText{Log: log, Text: text}, nil
}

// HeadDeltaText returns the delta-text record for the admin head revision,
// if both are present.
func (f *File) HeadDeltaText() (revision.ID, DeltaText, bool) {
	if f.Admin.Head == nil {
		return revision.ID{}, DeltaText{}, false
	}
	dt, ok := f.DeltaText[f.Admin.Head.String()]
	return *f.Admin.Head, dt, ok
}
