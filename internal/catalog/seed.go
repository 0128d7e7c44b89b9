package catalog

const imageBase = "https://hni.net/public/front/img/produk/"

// SeedProducts returns a fresh copy of the twelve records a new catalog
// starts with.
func SeedProducts() []Product {
	return []Product{
		{ID: "prod-001", Name: "Madu Pahit", Price: 120000, Category: "madu", Image: imageBase + "MADU%20PAHIT-1_04-01-19_.png", Short: "Madu pahit alami", Description: "Madu pahit murni, cocok untuk kesehatan.", Benefits: []string{"Dukungan imunitas"}, Composition: []string{"Madu murni"}, Stock: 25},
		{ID: "prod-002", Name: "Centella Teh Sinergi", Price: 70000, Category: "suplemen", Image: imageBase + "CENTELLA-1_04-01-19_.png", Short: "Teh sinergi Centella", Description: "Teh herbal dengan Centella asiatica.", Benefits: []string{"Menunjang kesehatan kulit"}, Composition: []string{"Centella asiatica"}, Stock: 30},
		{ID: "prod-003", Name: "Deep Olive", Price: 145000, Category: "essential", Image: imageBase + "deep-olive-0625_16-06-25_.png", Short: "Minyak berkualitas", Description: "Deep olive premium.", Benefits: []string{"Nutrisi kulit"}, Composition: []string{"Olive oil"}, Stock: 15},
		{ID: "prod-004", Name: "Etta Goat Milk", Price: 75000, Category: "suplemen", Image: imageBase + "egm-topbrand_14-11-24_.png", Short: "Susu kambing berkualitas", Description: "Susu kambing full cream.", Benefits: []string{"Sumber nutrisi"}, Composition: []string{"Susu kambing"}, Stock: 40},
		{ID: "prod-005", Name: "Madu Multiflora", Price: 100000, Category: "madu", Image: imageBase + "MADU%20MULTI%202020_18-05-20_.png", Bestseller: true, Short: "Madu multiflora", Description: "Madu multiflora pilihan.", Benefits: []string{"Energi & imunitas"}, Composition: []string{"Madu multiflora"}, Stock: 20},
		{ID: "prod-006", Name: "Madu Habbat", Price: 130000, Category: "madu", Image: imageBase + "MADU%20HABBATS%202020_18-05-20_.png", Bestseller: true, Short: "Madu habbat", Description: "Madu dengan habbat.", Benefits: []string{"Imunitas"}, Composition: []string{"Madu", "Habbatussauda"}, Stock: 18},
		{ID: "prod-007", Name: "Hni Coffee", Price: 125000, Category: "suplemen", Image: imageBase + "hcmockup2021_27-12-21_.png", Short: "Kopi herbal", Description: "Kopi kesehatan HNI.", Benefits: []string{"Stamina"}, Composition: []string{"Kopi robusta"}, Stock: 35},
		{ID: "prod-008", Name: "Hania Susu Kambing Full Cream", Price: 75000, Category: "suplemen", Image: imageBase + "hania-fc-full_01-03-23_.png", Short: "Susu kambing full cream", Description: "Susu kambing Hania full cream.", Benefits: []string{"Nutrisi keluarga"}, Composition: []string{"Susu kambing"}, Stock: 28},
		{ID: "prod-009", Name: "Sevel Stamina", Price: 115000, Category: "suplemen", Image: imageBase + "sevel-stamina_11-09-25_.png", Short: "Suplemen stamina", Description: "Suplemen pendongkrak stamina.", Benefits: []string{"Stamina"}, Composition: []string{"Ekstrak herbal"}, Stock: 22},
		{ID: "prod-010", Name: "Hania Realco Cappuccino Less Sugar", Price: 50000, Category: "suplemen", Image: imageBase + "cappucino-lessugar1_14-11-24_.png", Short: "Cappuccino less sugar", Description: "Minuman cappuccino rendah gula.", Benefits: []string{"Rasa enak"}, Composition: []string{"Kopi", "Susu"}, Stock: 50},
		{ID: "prod-011", Name: "Madu HNI Health", Price: 80000, Category: "madu", Image: imageBase + "hni-health-3_18-11-24_.png", Short: "Madu HNI Health", Description: "Madu kesehatan HNI.", Benefits: []string{"Imunitas"}, Composition: []string{"Madu"}, Stock: 26},
		{ID: "prod-012", Name: "Hania Gluta Juicy Drink", Price: 185000, Category: "suplemen", Image: imageBase + "gluta2_27-10-22_.png", Bestseller: true, Short: "Gluta Juicy Drink", Description: "Minuman glutathione.", Benefits: []string{"Kulit cerah"}, Composition: []string{"Glutathione"}, Stock: 12},
	}
}
