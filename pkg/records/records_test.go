package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const headerLine = "id,file_name,alt_text,created_at,mime_type,width,height,duration,status,error"

func TestReadAll(t *testing.T) {
	path := writeInput(t,
		headerLine,
		`gid://shopify/MediaImage/1,shoe.jpg,,2024-05-01,image/jpeg,800,600,,ACTIVE,`,
		`gid://shopify/MediaImage/2,bag.jpg,"A leather bag",2024-05-02,image/jpeg,1024,768,,ACTIVE,`,
	)

	rows, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].FileName != "shoe.jpg" || rows[0].AltText != "" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].AltText != "A leather bag" || rows[1].Width != "1024" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestReadAll_RejectsBadHeader(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing column", "id,file_name,alt_text"},
		{"renamed column", strings.Replace(headerLine, "file_name", "filename", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadAll(writeInput(t, tt.line)); err == nil {
				t.Error("expected header validation error")
			}
		})
	}
}

func TestReadAll_MissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestPartition(t *testing.T) {
	rows := make([]Row, 1237)
	for i := range rows {
		rows[i].ID = "r"
	}

	tests := []struct {
		name      string
		count     int
		batchSize int
		wantSizes []int
	}{
		{"remainder batch", 1237, 500, []int{500, 500, 237}},
		{"exact multiple", 1000, 500, []int{500, 500}},
		{"single short batch", 7, 500, []int{7}},
		{"non-positive size", 7, 0, []int{7}},
		{"empty input", 0, 500, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Partition(rows[:tt.count], tt.batchSize)
			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			for i, want := range tt.wantSizes {
				if len(batches[i]) != want {
					t.Errorf("batch %d has %d rows, want %d", i, len(batches[i]), want)
				}
			}
		})
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	batch := []Row{
		{ID: "1", FileName: "shoe.jpg", AltText: "A shoe", ResolvedURL: "https://cdn.example.com/shoe.jpg"},
		{ID: "2", FileName: "bag.jpg", AltText: "A bag, red"},
	}
	if err := w.Append(batch); err != nil {
		t.Fatal(err)
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll(output) error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].AltText != "A shoe" || rows[1].AltText != "A bag, red" {
		t.Errorf("rows = %+v", rows)
	}

	// The resolved URL is working state, not an output column.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "cdn.example.com") {
		t.Error("output must not contain resolved URLs")
	}
	if rows[0].ResolvedURL != "" {
		t.Errorf("ResolvedURL survived serialization: %q", rows[0].ResolvedURL)
	}
}

func TestWriter_AppendsIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Append([]Row{{ID: "1", FileName: "a.jpg"}}); err != nil {
		t.Fatal(err)
	}

	// Completed batches must already be on disk before Close.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Errorf("output has %d lines after first batch, want 2", len(lines))
	}
}
