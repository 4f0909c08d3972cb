package core

import "github.com/jackc/pgx/v5/pgtype"

func txt(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

func num(f float64) pgtype.Float8 { return pgtype.Float8{Float64: f, Valid: true} }

// sampleRecords mirrors the five built-in dashboard records.
func sampleRecords() []BusinessRecord {
	type row struct {
		id        float64
		name      string
		address   string
		borough   string
		lat, lng  float64
		employees float64
		waste     float64
	}
	rows := []row{
		{1, "Premier Fruit Co.", "5192 Boulevard René-Lévesque", "Ville-Marie", 45.518617, -73.495136, 40, 152},
		{2, "Green Valley Processing", "5579 Boulevard Saint-Laurent", "Verdun", 45.539291, -73.929013, 107, 422},
		{3, "Harvest Processing Ltd.", "1686 Avenue du Mont-Royal", "Baie-D'Urfé", 45.584323, -73.618883, 72, 307},
		{4, "Montreal Vegetable Co.", "2434 Rue Wellington", "Rosemont–La Petite-Patrie", 45.619380, -73.501338, 40, 210},
		{5, "Montreal Food Processing", "8667 Rue Notre-Dame", "Le Plateau-Mont-Royal", 45.498230, -73.712374, 78, 219},
	}

	out := make([]BusinessRecord, len(rows))
	for i, r := range rows {
		out[i] = BusinessRecord{
			ID:                num(r.id),
			Name:              txt(r.name),
			NAICSCode:         txt("311420"),
			Category:          txt("Fruit & Vegetable Processing"),
			Address:           txt(r.address),
			Borough:           txt(r.borough),
			Latitude:          num(r.lat),
			Longitude:         num(r.lng),
			Employees:         num(r.employees),
			WasteLevel:        txt("High"),
			AnnualWasteTonnes: num(r.waste),
			Seasonal:          [4]pgtype.Float8{num(15), num(25), num(45), num(15)},
			PeakSeason:        txt("Q3"),
		}
	}
	return out
}

func sampleStore() *RecordStore {
	return NewRecordStore(&Dataset{Records: sampleRecords()})
}

// mixedStore has several categories, a record with no coordinates and one
// with missing text fields.
func mixedStore() *RecordStore {
	recs := []BusinessRecord{
		{ID: num(10), Name: txt("Boulangerie Adonis"), Category: txt("Retail Bakeries"), Address: txt("1 Rue Ontario"), Borough: txt("Hochelaga"), Employees: num(12), AnnualWasteTonnes: num(30), WasteLevel: txt("Medium")},
		{ID: num(11), Name: txt("Brasserie du Nord"), Category: txt("Breweries"), Address: txt("22 Rue Beaubien"), Borough: txt("Rosemont"), Employees: num(55), AnnualWasteTonnes: num(120), WasteLevel: txt("High")},
		{ID: num(12), Name: txt("Pain Doré"), Category: txt("Commercial Bakeries"), Address: txt("9 Rue Verdun"), Borough: txt("Lachine"), Employees: num(200)},
		{ID: num(13), Name: txt("anonymous"), Category: txt("Breweries")},
		{ID: num(14), Name: txt("Épicerie Atwater"), Category: txt("Fruit & Vegetable Wholesalers"), Address: txt("138 Avenue Atwater"), Borough: txt("Sud-Ouest"), AnnualWasteTonnes: num(75.5)},
	}
	return NewRecordStore(&Dataset{Records: recs})
}

func ids(v View) []float64 {
	out := make([]float64, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = v.At(i).ID.Float64
	}
	return out
}

func equalIDs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
