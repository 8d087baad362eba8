package loader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/gzip"

	"auditflat/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadDelimited verifies header-mapped CSV loading: header names bind
// case-insensitively with spaces folded to underscores, a leading BOM is
// stripped, columns matching nothing are ignored, and user_ids splits on
// the list separator.
func TestLoadDelimited(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "audit.csv",
		"\uFEFFCreated At,identity,OPERATION,record_type,result_count,result_index,user_ids,payload,extra\n"+
			`2024-01-02T03:04:05Z,svc-a,Search,audit,2,0,u1;u2,"{""total"":2}",ignored`+"\n"+
			`2024-01-02T03:04:06Z,svc-b,Export,audit,0,0,,"{}",ignored`+"\n")

	recs, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("record count = %d, want 2", len(recs))
	}

	r := recs[0]
	if r.CreatedAt != "2024-01-02T03:04:05Z" || r.Identity != "svc-a" || r.Operation != "Search" {
		t.Fatalf("metadata fields wrong: %+v", r)
	}
	if r.Payload != `{"total":2}` {
		t.Fatalf("payload = %q", r.Payload)
	}
	if want := []string{"u1", "u2"}; !reflect.DeepEqual(r.UserIDs, want) {
		t.Fatalf("user IDs = %v, want %v", r.UserIDs, want)
	}
	if recs[1].UserIDs != nil {
		t.Fatalf("empty user_ids column loaded as %v, want nil", recs[1].UserIDs)
	}
}

// TestLoadDelimitedOptions verifies per-input overrides: a tab delimiter
// and a custom list separator.
func TestLoadDelimitedOptions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "audit.txt",
		"operation\tpayload\tuser_ids\n"+
			"Search\t{}\tu1|u2\n")

	recs, err := Load(path, config.Options{
		"comma":          "\t",
		"list_separator": "|",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count = %d, want 1", len(recs))
	}
	if recs[0].Operation != "Search" {
		t.Fatalf("operation = %q", recs[0].Operation)
	}
	if want := []string{"u1", "u2"}; !reflect.DeepEqual(recs[0].UserIDs, want) {
		t.Fatalf("user IDs = %v, want %v", recs[0].UserIDs, want)
	}
	if recs[0].CreatedAt != "" {
		t.Fatalf("column missing from header loaded as %q, want empty", recs[0].CreatedAt)
	}
}

// TestLoadGzip verifies that a .csv.gz input is transparently decompressed
// before parsing.
func TestLoadGzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.csv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("operation,payload\nSearch,{}\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Operation != "Search" {
		t.Fatalf("records = %+v, want one Search record", recs)
	}
}

// TestLoadEncoding verifies legacy single-byte input is transcoded to
// UTF-8: 0xE9 in windows-1252 is U+00E9.
func TestLoadEncoding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.csv")
	raw := append([]byte("identity,payload\nRen"), 0xE9)
	raw = append(raw, []byte(",{}\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := Load(path, config.Options{"encoding": "windows-1252"})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Identity != "René" {
		t.Fatalf("identity = %q, want René", recs[0].Identity)
	}

	if _, err := Load(path, config.Options{"encoding": "ebcdic"}); err == nil {
		t.Fatalf("unknown encoding accepted")
	}
}

// TestLoadXMLStream verifies the object-stream reader: one record per child
// element of the root wrapper, payload text carried through verbatim.
func TestLoadXMLStream(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "audit.xml", `<?xml version="1.0"?>
<AuditRecords>
  <AuditRecord>
    <CreatedAt>2024-01-02T03:04:05Z</CreatedAt>
    <Identity>svc-a</Identity>
    <Operation>Search</Operation>
    <RecordType>audit</RecordType>
    <ResultCount>2</ResultCount>
    <ResultIndex>0</ResultIndex>
    <UserIds><UserId>u1</UserId><UserId>u2</UserId></UserIds>
    <Payload>{"Results":[1,2],"total":2}</Payload>
  </AuditRecord>
  <AuditRecord>
    <Operation>Export</Operation>
    <Payload><![CDATA[{"target":"file"}]]></Payload>
  </AuditRecord>
</AuditRecords>`)

	recs, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("record count = %d, want 2", len(recs))
	}
	if recs[0].Payload != `{"Results":[1,2],"total":2}` {
		t.Fatalf("payload = %q", recs[0].Payload)
	}
	if want := []string{"u1", "u2"}; !reflect.DeepEqual(recs[0].UserIDs, want) {
		t.Fatalf("user IDs = %v, want %v", recs[0].UserIDs, want)
	}
	if recs[1].Payload != `{"target":"file"}` {
		t.Fatalf("CDATA payload = %q", recs[1].Payload)
	}
}

// TestLoadUnsupportedFormat verifies an unrecognized extension fails before
// the file is opened for parsing.
func TestLoadUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "audit.parquet", "not parsed")
	_, err := Load(path, nil)
	ufe, ok := err.(*UnsupportedFormatError)
	if !ok {
		t.Fatalf("err = %v, want *UnsupportedFormatError", err)
	}
	if ufe.Ext != ".parquet" {
		t.Fatalf("Ext = %q, want .parquet", ufe.Ext)
	}
}

// TestLoadEmptyDelimited verifies a header-only or empty file yields no
// records and no error.
func TestLoadEmptyDelimited(t *testing.T) {
	t.Parallel()

	if recs, err := Load(writeFile(t, "a.csv", "operation,payload\n"), nil); err != nil || len(recs) != 0 {
		t.Fatalf("header-only: recs=%v err=%v", recs, err)
	}
	if recs, err := Load(writeFile(t, "b.csv", ""), nil); err != nil || len(recs) != 0 {
		t.Fatalf("empty: recs=%v err=%v", recs, err)
	}
}
