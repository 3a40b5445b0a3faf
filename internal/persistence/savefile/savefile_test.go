package savefile

import (
	"os"
	"path/filepath"
	"testing"

	"pizzatorio.dev/internal/sim/catalogs"
	"pizzatorio.dev/internal/sim/tuning"
	"pizzatorio.dev/internal/sim/world"
)

func testWorld(t *testing.T, seed int64) *world.World {
	t.Helper()
	cats := catalogs.Load(t.TempDir())
	w, err := world.New(world.WorldConfig{ID: "save-test", Seed: seed}, cats, tuning.Default())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func TestWriteRead_Roundtrip(t *testing.T) {
	w := testWorld(t, 11)
	for i := 0; i < 60; i++ {
		w.Tick(0.1)
	}

	path := filepath.Join(t.TempDir(), "saves", "factory.sav")
	save := SaveV1{
		Header: Header{Version: 1, RunID: "run-roundtrip", Seed: 11, Tick: w.TickCount(), SimTime: w.Time()},
		Width:  w.Config().Width,
		Height: w.Config().Height,
		State:  w.ExportState(),
	}
	if err := Write(path, save); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header != save.Header {
		t.Fatalf("header = %+v, want %+v", got.Header, save.Header)
	}
	if got.Width != 20 || got.Height != 15 {
		t.Fatalf("dimensions = %dx%d, want 20x15", got.Width, got.Height)
	}

	w2 := testWorld(t, 11)
	w2.RestoreState(got.State)
	if d1, d2 := w.StateDigest(), w2.StateDigest(); d1 != d2 {
		t.Fatalf("digest mismatch after file roundtrip: %s vs %s", d1, d2)
	}
}

func TestRead_LegacyPlainJSON(t *testing.T) {
	legacy := `{
		"grid": [[{"kind":"source"},{"kind":"machine","rot":1}]],
		"items": [{"x":1,"y":0,"stage":2}],
		"money": 440,
		"hygiene": 72.5,
		"order_channel": "takeaway",
		"tech_tree": {"ovens": true}
	}`
	path := filepath.Join(t.TempDir(), "factory_save.json")
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header.Version != 0 {
		t.Errorf("header version = %d, want 0 for a legacy save", got.Header.Version)
	}
	if got.Width != 2 || got.Height != 1 {
		t.Errorf("dimensions = %dx%d, want lifted 2x1", got.Width, got.Height)
	}
	if got.State.Money == nil || *got.State.Money != 440 {
		t.Errorf("money = %v, want 440", got.State.Money)
	}
	if got.State.Hygiene == nil || *got.State.Hygiene != 72.5 {
		t.Errorf("hygiene = %v, want 72.5", got.State.Hygiene)
	}
	if got.State.OrderChannel != "takeaway" {
		t.Errorf("order channel = %q, want takeaway", got.State.OrderChannel)
	}
	if len(got.State.Items) != 1 || string(got.State.Items[0].Stage) != "baked" {
		t.Errorf("items = %+v, want one item at the numeric stage 2 (baked)", got.State.Items)
	}
	if !got.State.TechTree["ovens"] {
		t.Error("tech tree lost in legacy decode")
	}
}

func TestReadHeader_WithoutDecodingPayload(t *testing.T) {
	w := testWorld(t, 3)
	path := filepath.Join(t.TempDir(), "factory.sav")
	save := SaveV1{
		Header: Header{Version: 1, RunID: "run-header", Seed: 3, Tick: 41, SimTime: 4.1},
		Width:  20,
		Height: 15,
		State:  w.ExportState(),
	}
	if err := Write(path, save); err != nil {
		t.Fatalf("write: %v", err)
	}

	hdr, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if hdr != save.Header {
		t.Fatalf("header = %+v, want %+v", hdr, save.Header)
	}
}

func TestReadHeader_LegacyFileReportsVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	if err := os.WriteFile(path, []byte(`{"money": 10}`), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	hdr, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if hdr != (Header{}) {
		t.Fatalf("header = %+v, want zero for a legacy save", hdr)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.sav")); err == nil {
		t.Fatal("want error for a missing file")
	}
}

func TestRead_CorruptCompressedStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.sav")
	raw := append(append([]byte(nil), zstdMagic...), []byte("not a real frame")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("want error for a corrupt stream")
	}
}

func TestRead_GarbagePlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.sav")
	if err := os.WriteFile(path, []byte("definitely not json"), 0o644); err != nil {
		t.Fatalf("write garbage file: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("want error for a garbage file")
	}
}
