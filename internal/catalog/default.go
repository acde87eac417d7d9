package catalog

// Default returns the production catalog: 15 years, 6 regions / 34 countries,
// 10 diseases / 28 brands, 4 age groups and 2 genders.
func Default() *Catalog {
	return &Catalog{
		FirstYear: 2021,
		LastYear:  2035,
		Regions: []Region{
			{Name: "North America", Countries: []Country{
				{"USA", HighIncome}, {"Canada", HighIncome}, {"Mexico", MiddleIncome},
			}},
			{Name: "Europe", Countries: []Country{
				{"Germany", HighIncome}, {"UK", HighIncome}, {"France", HighIncome},
				{"Spain", HighIncome}, {"Italy", HighIncome}, {"Poland", MiddleIncome},
				{"Romania", MiddleIncome},
			}},
			{Name: "APAC", Countries: []Country{
				{"Japan", HighIncome}, {"Australia", HighIncome}, {"Singapore", HighIncome},
				{"China", MiddleIncome}, {"India", MiddleIncome}, {"Thailand", MiddleIncome},
				{"Pakistan", LowIncome}, {"Bangladesh", LowIncome}, {"Nepal", LowIncome},
			}},
			{Name: "Latin America", Countries: []Country{
				{"Brazil", MiddleIncome}, {"Argentina", MiddleIncome}, {"Chile", MiddleIncome},
				{"Colombia", MiddleIncome}, {"Peru", MiddleIncome},
			}},
			{Name: "Middle East", Countries: []Country{
				{"UAE", HighIncome}, {"Saudi Arabia", HighIncome}, {"Israel", HighIncome},
				{"Egypt", MiddleIncome}, {"Iraq", MiddleIncome},
			}},
			{Name: "Africa", Countries: []Country{
				{"South Africa", MiddleIncome}, {"Nigeria", LowIncome}, {"Kenya", LowIncome},
				{"Ethiopia", LowIncome}, {"Ghana", LowIncome},
			}},
		},
		Diseases: []Disease{
			{"HBV", []string{"Engerix-B", "Heplisav-B", "Recombivax HB", "Twinrix"}},
			{"Herpes", []string{"Shingrix", "Zostavax"}},
			{"TCV", []string{"Typbar TCV", "Typhim Vi", "Vivotif"}},
			{"HPV", []string{"Gardasil 9", "Cervarix"}},
			{"Influenza", []string{"Fluzone", "Flucelvax", "FluMist", "Fluad"}},
			{"Pneumococcal", []string{"Prevnar 13", "Prevnar 20", "Pneumovax 23", "Synflorix"}},
			{"MMR", []string{"M-M-R II", "Priorix"}},
			{"Rotavirus", []string{"RotaTeq", "Rotarix"}},
			{"Meningococcal", []string{"Bexsero", "Trumenba", "MenACWY"}},
			{"Varicella", []string{"Varivax", "ProQuad"}},
		},
		Companies: []string{
			"Pfizer", "GSK", "Merck", "Sanofi", "AstraZeneca", "Moderna",
			"Bharat Biotech", "Serum Institute",
		},
		AgeGroups:      []string{"Pediatric", "Adult", "Elderly", "All Ages"},
		Genders:        []string{"Male", "Female"},
		Segments:       []string{"Gender", "Brand", "Age", "ROA", "FDF"},
		ROA:            []string{"IM", "SC", "Oral", "Intranasal"},
		FDF:            []string{"Vial", "Prefilled Syringe", "Multi-dose Vial", "Oral Solution"},
		Procurement:    []string{"UNICEF", "GAVI", "PAHO", "Hospital", "Private Clinic", "Government"},
		PublicChannels: []string{"UNICEF", "GAVI", "PAHO", "Government"},
	}
}
