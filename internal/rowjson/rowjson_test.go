package rowjson_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/flatdb/internal/rowjson"
)

func Test_Map_Zips_FieldsWithValues_When_CountsMatch(t *testing.T) {
	t.Parallel()

	objs, err := rowjson.Map([]string{"id", " name "}, []string{"1, widget ", "2,gadget"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	got, err := rowjson.Marshal(objs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `[{"id":"1","name":"widget"},{"id":"2","name":"gadget"}]`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func Test_Map_Keeps_ColumnOrder_When_NamesAreUnsorted(t *testing.T) {
	t.Parallel()

	objs, err := rowjson.Map([]string{"zeta", "alpha"}, []string{"z,a"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	got, _ := rowjson.Marshal(objs)
	if want := `[{"zeta":"z","alpha":"a"}]`; string(got) != want {
		t.Fatalf("json=%s, want %s", got, want)
	}
}

func Test_Map_Keeps_EmptyValues_When_RowHasAdjacentCommas(t *testing.T) {
	t.Parallel()

	objs, err := rowjson.Map([]string{"a", "b", "c"}, []string{"1,,3"})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	want := []map[string]string{{"a": "1", "b": "", "c": "3"}}
	if diff := cmp.Diff(want, rowjson.Plain(objs)); diff != "" {
		t.Fatalf("Plain mismatch (-want +got):\n%s", diff)
	}
}

func Test_Map_Fails_When_RowFieldCountDiffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows []string
	}{
		{name: "TooFew", rows: []string{"1,a", "2"}},
		{name: "TooMany", rows: []string{"1,a,extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			objs, err := rowjson.Map([]string{"id", "name"}, tt.rows)
			if !errors.Is(err, rowjson.ErrFieldCountMismatch) {
				t.Fatalf("err=%v, want %v", err, rowjson.ErrFieldCountMismatch)
			}

			if objs != nil {
				t.Fatalf("objs=%v, want nil", objs)
			}
		})
	}
}

func Test_Map_Fails_When_InputIsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := rowjson.Map(nil, []string{"1"}); !errors.Is(err, rowjson.ErrEmptyInput) {
		t.Fatalf("no fields: err=%v, want %v", err, rowjson.ErrEmptyInput)
	}

	if _, err := rowjson.Map([]string{"id"}, nil); !errors.Is(err, rowjson.ErrEmptyInput) {
		t.Fatalf("no rows: err=%v, want %v", err, rowjson.ErrEmptyInput)
	}
}

func Test_Marshal_Returns_EmptyArray_When_NoObjects(t *testing.T) {
	t.Parallel()

	got, err := rowjson.Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if string(got) != rowjson.EmptyArray {
		t.Fatalf("got %s, want %s", got, rowjson.EmptyArray)
	}
}
