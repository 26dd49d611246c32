package state

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"sync"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// currentVersion is the persistence stream format version. There is no
// prior released format to migrate from yet; the version byte exists so a
// future incompatible change has somewhere to dispatch on.
const currentVersion byte = 1

type patchsetSnapshot struct {
	Marks   []ids.Mark
	Records []*Patchset
}

// Serialize writes m's full state to w as a gzip-compressed stream: a
// version byte followed by four length-prefixed blobs (file revisions,
// patchsets, tags, raw marks, in that order). The three structured blobs
// are gob-encoded independently and in parallel.
func (m *Manager) Serialize(w io.Writer) error {
	frSnap := m.fileRevisions.snapshot()
	psMarks, psRecords := m.patchsets.snapshot()
	tagSnap := m.tags.snapshot()
	rawMarks := m.GetRawMarks()

	var frBuf, psBuf, tagBuf bytes.Buffer
	var frErr, psErr, tagErr error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		frErr = gob.NewEncoder(&frBuf).Encode(frSnap)
	}()
	go func() {
		defer wg.Done()
		psErr = gob.NewEncoder(&psBuf).Encode(patchsetSnapshot{Marks: psMarks, Records: psRecords})
	}()
	go func() {
		defer wg.Done()
		tagErr = gob.NewEncoder(&tagBuf).Encode(tagSnap)
	}()
	wg.Wait()

	for _, err := range []error{frErr, psErr, tagErr} {
		if err != nil {
			return fmt.Errorf("state: encoding snapshot: %w", err)
		}
	}

	gz := gzip.NewWriter(w)
	if _, err := gz.Write([]byte{currentVersion}); err != nil {
		return fmt.Errorf("state: writing version: %w", err)
	}
	for _, blob := range [][]byte{frBuf.Bytes(), psBuf.Bytes(), tagBuf.Bytes(), rawMarks} {
		if err := writeBlob(gz, blob); err != nil {
			return err
		}
	}
	return gz.Close()
}

func writeBlob(w io.Writer, blob []byte) error {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(blob)))
	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("state: writing blob length: %w", err)
	}
	if _, err := w.Write(blob); err != nil {
		return fmt.Errorf("state: writing blob: %w", err)
	}
	return nil
}

func readBlob(r io.Reader) ([]byte, error) {
	var length [8]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return nil, fmt.Errorf("state: reading blob length: %w", err)
	}
	n := binary.BigEndian.Uint64(length[:])
	blob := make([]byte, n)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, fmt.Errorf("state: reading blob: %w", err)
	}
	return blob, nil
}

// Deserialize reads a stream written by Serialize and returns the
// reconstructed Manager.
func Deserialize(r io.Reader) (*Manager, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("state: opening stream: %w", err)
	}
	defer gz.Close()

	var version [1]byte
	if _, err := io.ReadFull(gz, version[:]); err != nil {
		return nil, fmt.Errorf("state: reading version: %w", err)
	}
	if version[0] != currentVersion {
		return nil, &UnknownSerialisationVersionError{Version: version[0]}
	}

	frBlob, err := readBlob(gz)
	if err != nil {
		return nil, err
	}
	psBlob, err := readBlob(gz)
	if err != nil {
		return nil, err
	}
	tagBlob, err := readBlob(gz)
	if err != nil {
		return nil, err
	}
	rawMarks, err := readBlob(gz)
	if err != nil {
		return nil, err
	}

	var frSnap []FileRevision
	var psSnap patchsetSnapshot
	var tagSnap tagSnapshot
	var frErr, psErr, tagErr error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		frErr = gob.NewDecoder(bytes.NewReader(frBlob)).Decode(&frSnap)
	}()
	go func() {
		defer wg.Done()
		psErr = gob.NewDecoder(bytes.NewReader(psBlob)).Decode(&psSnap)
	}()
	go func() {
		defer wg.Done()
		tagErr = gob.NewDecoder(bytes.NewReader(tagBlob)).Decode(&tagSnap)
	}()
	wg.Wait()

	for _, err := range []error{frErr, psErr, tagErr} {
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("state: decoding snapshot: %w", err)
		}
	}

	m := New()
	m.fileRevisions.restore(frSnap)
	m.patchsets.restore(psSnap.Marks, psSnap.Records)
	m.tags.restore(tagSnap)
	m.rawMarks = rawMarks
	return m, nil
}
