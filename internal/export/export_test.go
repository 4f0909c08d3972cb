package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/dataset"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/language"
)

func TestExportCSV_Sample(t *testing.T) {
	store := core.NewRecordStore(dataset.Sample())
	got := ExportCSV(store.All())

	lines := strings.Split(got, "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), got)
	}
	if lines[0] != strings.Join(core.CanonicalColumns(), ",") {
		t.Errorf("header = %q", lines[0])
	}
	want := "1,Premier Fruit Co.,311420,Fruit & Vegetable Processing,5192 Boulevard René-Lévesque,Ville-Marie,45.518617,-73.495136,40,High,152,15,25,45,15,Q3"
	if lines[1] != want {
		t.Errorf("row 1 = %q, want %q", lines[1], want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("export ends with a newline")
	}
}

func TestExportCSV_Empty(t *testing.T) {
	store := core.NewRecordStore(dataset.Sample())
	empty := core.Filter{Active: core.NewCategorySet()}.Apply(store)

	if got := ExportCSV(empty); got != "" {
		t.Errorf("ExportCSV(empty) = %q, want empty string", got)
	}
	if got := CSV([]string{"name"}, nil); got != "" {
		t.Errorf("CSV(nil) = %q, want empty string", got)
	}
}

func TestCSV_Quoting(t *testing.T) {
	records := []core.BusinessRecord{
		{
			Name:    pgtype.Text{String: "Pain Doré, Inc.", Valid: true},
			Address: pgtype.Text{String: `The "Old" Mill`, Valid: true},
		},
	}
	got := CSV([]string{"name", "address", "employees", "borough"}, records)
	want := "name,address,employees,borough\n" + `"Pain Doré, Inc.",The "Old" Mill,,`
	if got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestCSV_ZeroIsNotMissing(t *testing.T) {
	records := []core.BusinessRecord{{Employees: pgtype.Float8{Float64: 0, Valid: true}}}
	if got := CSV([]string{"employees"}, records); got != "employees\n0" {
		t.Errorf("CSV() = %q, want zero kept", got)
	}
}

func TestExportCSV_FollowsViewOrder(t *testing.T) {
	store := core.NewRecordStore(dataset.Sample())
	v, err := core.NewSorter(language.English).Sort(store.All(), "annual_waste_tonnes")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(ExportCSV(v), "\n")
	if !strings.HasPrefix(lines[1], "2,Green Valley Processing,") {
		t.Errorf("first row = %q, want the largest waste producer", lines[1])
	}
}

func TestExportCSV_RoundTrip(t *testing.T) {
	src := "business_id,name,category,address,borough,latitude,longitude,employees,waste_level,annual_waste_tonnes,website\n" +
		`7,Boulangerie Adonis,Retail Bakeries,"1 Rue Ontario, Est",Hochelaga,45.55,-73.54,12,Medium,30.5,https://adonis.example` + "\n" +
		"8,Brasserie du Nord,Breweries,22 Rue Beaubien,Rosemont,,,,High,120,\n" +
		"9,Épicerie Atwater,Fruit & Vegetable Wholesalers,138 Avenue Atwater,Sud-Ouest,45.48,-73.57,0,,75,\n"

	ds, err := dataset.ParseCSV(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	store := core.NewRecordStore(ds)
	view := store.All()

	out := ExportCSV(view)
	back, err := dataset.ParseCSV(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCSV(export) error = %v", err)
	}

	if strings.Join(back.Columns, ",") != strings.Join(store.Columns(), ",") {
		t.Errorf("columns = %v, want %v", back.Columns, store.Columns())
	}
	if len(back.Records) != view.Len() {
		t.Fatalf("len = %d, want %d", len(back.Records), view.Len())
	}
	for i, r := range back.Records {
		orig := view.At(i)
		for _, col := range store.Columns() {
			if got, want := core.ValueOf(r, col), core.ValueOf(orig, col); got != want {
				t.Errorf("row %d %s = %q, want %q", i, col, got, want)
			}
		}
	}
}

func TestWriteCSV(t *testing.T) {
	store := core.NewRecordStore(dataset.Sample())
	var buf bytes.Buffer
	if err := WriteCSV(&buf, store.All()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.String() != ExportCSV(store.All()) {
		t.Error("WriteCSV output differs from ExportCSV")
	}
	if ContentDisposition() != `attachment; filename="montreal-agrifood-businesses.csv"` {
		t.Errorf("ContentDisposition() = %q", ContentDisposition())
	}
}
