package dataset

import (
	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// SampleName identifies the built-in dataset in logs.
const SampleName = "sample"

type sampleBusiness struct {
	id        float64
	name      string
	address   string
	borough   string
	lat, lng  float64
	employees float64
	waste     float64
}

// Five fruit and vegetable processors shown when no source is reachable.
var sampleBusinesses = []sampleBusiness{
	{1, "Premier Fruit Co.", "5192 Boulevard René-Lévesque", "Ville-Marie", 45.518617, -73.495136, 40, 152},
	{2, "Green Valley Processing", "5579 Boulevard Saint-Laurent", "Verdun", 45.539291, -73.929013, 107, 422},
	{3, "Harvest Processing Ltd.", "1686 Avenue du Mont-Royal", "Baie-D'Urfé", 45.584323, -73.618883, 72, 307},
	{4, "Montreal Vegetable Co.", "2434 Rue Wellington", "Rosemont–La Petite-Patrie", 45.619380, -73.501338, 40, 210},
	{5, "Montreal Food Processing", "8667 Rue Notre-Dame", "Le Plateau-Mont-Royal", 45.498230, -73.712374, 78, 219},
}

// Sample returns a fresh copy of the built-in dataset in canonical column order.
func Sample() *core.Dataset {
	text := func(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }
	num := func(f float64) pgtype.Float8 { return pgtype.Float8{Float64: f, Valid: true} }

	ds := &core.Dataset{
		Columns: core.CanonicalColumns(),
		Records: make([]core.BusinessRecord, len(sampleBusinesses)),
	}
	for i, b := range sampleBusinesses {
		ds.Records[i] = core.BusinessRecord{
			ID:                num(b.id),
			Name:              text(b.name),
			NAICSCode:         text("311420"),
			Category:          text("Fruit & Vegetable Processing"),
			Address:           text(b.address),
			Borough:           text(b.borough),
			Latitude:          num(b.lat),
			Longitude:         num(b.lng),
			Employees:         num(b.employees),
			WasteLevel:        text("High"),
			AnnualWasteTonnes: num(b.waste),
			Seasonal:          [4]pgtype.Float8{num(15), num(25), num(45), num(15)},
			PeakSeason:        text("Q3"),
		}
	}
	return ds
}
