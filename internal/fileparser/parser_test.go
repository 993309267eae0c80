package fileparser

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
)

func TestDecodeRowsKeysFieldsByHeader(t *testing.T) {
	csv := "h1,h2\na,b\n"

	var rows []map[string]string
	n, err := DecodeRows(strings.NewReader(csv), func(fields map[string]string) error {
		rows = append(rows, fields)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(rows) != 1 {
		t.Fatalf("expected 1 row, got n=%d len=%d", n, len(rows))
	}
	if rows[0]["h1"] != "a" || rows[0]["h2"] != "b" {
		t.Errorf("expected {h1:a h2:b}, got %v", rows[0])
	}
}

func TestDecodeRowsEmptyInput(t *testing.T) {
	n, err := DecodeRows(strings.NewReader(""), func(map[string]string) error {
		t.Fatal("callback should not run for empty input")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestDecodeRowsHeaderOnly(t *testing.T) {
	n, err := DecodeRows(strings.NewReader("title,price,count\n"), func(map[string]string) error {
		t.Fatal("callback should not run")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

// A malformed row aborts the decode; rows before it were already handed to
// the callback and are not recalled.
func TestDecodeRowsMalformedRowAbortsAfterEarlierRows(t *testing.T) {
	csv := "title,price,count\nbook,10,3\npen,2,7\n\"broken,1\n"

	var seen []string
	n, err := DecodeRows(strings.NewReader(csv), func(fields map[string]string) error {
		seen = append(seen, fields["title"])
		return nil
	})
	if !errors.Is(err, apperrors.ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 decoded rows before failure, got %d", n)
	}
	if len(seen) != 2 || seen[0] != "book" || seen[1] != "pen" {
		t.Errorf("expected [book pen], got %v", seen)
	}
}

func TestDecodeRowsWrongFieldCountIsMalformed(t *testing.T) {
	csv := "h1,h2\na,b\nonly-one-field\n"

	_, err := DecodeRows(strings.NewReader(csv), func(map[string]string) error { return nil })
	if !errors.Is(err, apperrors.ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestDecodeRowsCallbackErrorStopsDecode(t *testing.T) {
	csv := "h1\na\nb\nc\n"
	stop := errors.New("stop")

	calls := 0
	_, err := DecodeRows(strings.NewReader(csv), func(map[string]string) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}
