package catalog

import "github.com/giygas/medicine-library/entities"

// seedMedicines are well-known medicines merged into every catalog.
var seedMedicines = []entities.Medicine{
	{ID: "c1", BrandName: "Panadol", GenericFormula: "Paracetamol", Dosage: "Tablet 500mg", Uses: []string{"Fever", "Pain Relief"}, IsCommon: true},
	{ID: "c2", BrandName: "Advil", GenericFormula: "Ibuprofen", Dosage: "Tablet 200mg", Uses: []string{"Inflammation", "Headache"}, IsCommon: true},
	{ID: "c3", BrandName: "Amoxil", GenericFormula: "Amoxicillin", Dosage: "Capsule 500mg", Uses: []string{"Bacterial Infection"}, IsCommon: true},
	{ID: "c4", BrandName: "Zyrtec", GenericFormula: "Cetirizine", Dosage: "Tablet 10mg", Uses: []string{"Allergies", "Hay Fever"}, IsCommon: true},
	{ID: "c5", BrandName: "Glucophage", GenericFormula: "Metformin", Dosage: "Tablet 500mg", Uses: []string{"Type 2 Diabetes"}, IsCommon: true},
	{ID: "c6", BrandName: "Lipitor", GenericFormula: "Atorvastatin", Dosage: "Tablet 20mg", Uses: []string{"High Cholesterol"}, IsCommon: true},
	{ID: "c7", BrandName: "Zantac", GenericFormula: "Ranitidine", Dosage: "Tablet 150mg", Uses: []string{"Acid Reflux", "Heartburn"}, IsCommon: true},
	{ID: "c8", BrandName: "Ventolin", GenericFormula: "Albuterol", Dosage: "Inhaler", Uses: []string{"Asthma"}, IsCommon: true},
	{ID: "c9", BrandName: "Prinivil", GenericFormula: "Lisinopril", Dosage: "Tablet 10mg", Uses: []string{"High Blood Pressure"}, IsCommon: true},
	{ID: "c10", BrandName: "Synthroid", GenericFormula: "Levothyroxine", Dosage: "Tablet 50mcg", Uses: []string{"Hypothyroidism"}, IsCommon: true},
	{ID: "c11", BrandName: "Xanax", GenericFormula: "Alprazolam", Dosage: "Tablet 0.5mg", Uses: []string{"Anxiety", "Panic Disorders"}, IsCommon: true},
	{ID: "c12", BrandName: "Zoloft", GenericFormula: "Sertraline", Dosage: "Tablet 50mg", Uses: []string{"Depression", "OCD"}, IsCommon: true},
	{ID: "c13", BrandName: "Nexium", GenericFormula: "Esomeprazole", Dosage: "Capsule 40mg", Uses: []string{"GERD", "Stomach Ulcers"}, IsCommon: true},
	{ID: "c14", BrandName: "Plavix", GenericFormula: "Clopidogrel", Dosage: "Tablet 75mg", Uses: []string{"Blood Thinner", "Stroke Prevention"}, IsCommon: true},
	{ID: "c15", BrandName: "Singulair", GenericFormula: "Montelukast", Dosage: "Tablet 10mg", Uses: []string{"Asthma Prevention", "Allergies"}, IsCommon: true},
	{ID: "c16", BrandName: "Crestor", GenericFormula: "Rosuvastatin", Dosage: "Tablet 10mg", Uses: []string{"High Cholesterol"}, IsCommon: true},
	{ID: "c17", BrandName: "Flonase", GenericFormula: "Fluticasone", Dosage: "Nasal Spray", Uses: []string{"Allergic Rhinitis"}, IsCommon: true},
	{ID: "c18", BrandName: "Lexapro", GenericFormula: "Escitalopram", Dosage: "Tablet 10mg", Uses: []string{"Depression", "Anxiety"}, IsCommon: true},
	{ID: "c19", BrandName: "Cymbalta", GenericFormula: "Duloxetine", Dosage: "Capsule 30mg", Uses: []string{"Nerve Pain", "Depression"}, IsCommon: true},
	{ID: "c20", BrandName: "Lantus", GenericFormula: "Insulin Glargine", Dosage: "Injection", Uses: []string{"Type 1 & 2 Diabetes"}, IsCommon: true},
}

// Seed returns a fresh copy of the curated seed list.
func Seed() []entities.Medicine {
	seed := make([]entities.Medicine, len(seedMedicines))
	for i, med := range seedMedicines {
		seed[i] = med.Clone()
	}
	return seed
}
