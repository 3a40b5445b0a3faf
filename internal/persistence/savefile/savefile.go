// Package savefile reads and writes factory save files. The on-disk format
// is a zstd stream holding a one-line JSON header followed by the gob-encoded
// save; the header line lets tools identify a save without decoding the
// payload. Files written by the old engine are plain JSON snapshots, and Read
// falls back to that format when the zstd magic is missing.
package savefile

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"pizzatorio.dev/internal/sim/world"
)

type Header struct {
	Version int     `json:"version"`
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Tick    uint64  `json:"tick"`
	SimTime float64 `json:"sim_time"`
}

type SaveV1 struct {
	Header Header `json:"header"`

	Width  int `json:"width"`
	Height int `json:"height"`

	State world.StateV1 `json:"state"`
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func Write(path string, save SaveV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(save.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&save); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func Read(path string) (SaveV1, error) {
	var save SaveV1
	f, err := os.Open(path)
	if err != nil {
		return save, err
	}
	defer f.Close()

	magic := make([]byte, len(zstdMagic))
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return save, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return save, err
	}
	if n == len(zstdMagic) && bytes.Equal(magic, zstdMagic) {
		return readCompressed(f)
	}
	return readLegacy(f)
}

// ReadHeader decodes just the header line of a compressed save. Legacy JSON
// saves have no header and report version 0.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, err
	}
	defer f.Close()

	magic := make([]byte, len(zstdMagic))
	if n, err := io.ReadFull(f, magic); err != nil || n != len(zstdMagic) || !bytes.Equal(magic, zstdMagic) {
		return hdr, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return hdr, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, err
	}
	defer dec.Close()

	line, err := bufio.NewReaderSize(dec, 256*1024).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return hdr, err
	}
	if err := json.Unmarshal(bytes.TrimSpace(line), &hdr); err != nil {
		return hdr, fmt.Errorf("decode header: %w", err)
	}
	return hdr, nil
}

func readCompressed(f *os.File) (SaveV1, error) {
	var save SaveV1
	dec, err := zstd.NewReader(f)
	if err != nil {
		return save, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; the gob payload carries the header too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return save, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&save); err != nil {
		return save, fmt.Errorf("gob decode: %w", err)
	}
	return save, nil
}

// readLegacy decodes an uncompressed save from the old engine: the bare
// snapshot object with no header or dimensions. Grid dimensions are lifted
// from the snapshot itself when it has one.
func readLegacy(f *os.File) (SaveV1, error) {
	var save SaveV1
	raw, err := io.ReadAll(f)
	if err != nil {
		return save, err
	}
	if err := json.Unmarshal(raw, &save.State); err != nil {
		return save, fmt.Errorf("legacy decode: %w", err)
	}
	if rows := save.State.Grid; len(rows) > 0 {
		save.Height = len(rows)
		save.Width = len(rows[0])
	}
	return save, nil
}
