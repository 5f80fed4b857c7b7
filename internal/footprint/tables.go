package footprint

var homeQuestions = []Question{
	{Field: "home_size", Default: "medium", Scores: map[string]float64{
		"small": 2.0, "medium": 4.0, "large": 6.0,
	}},
	{Field: "heating", Default: "gas", Scores: map[string]float64{
		"electric": 3.0, "gas": 2.5, "oil": 4.0, "heat_pump": 1.0, "none": 0,
	}},
	{Field: "ac_usage", Default: "moderate", Scores: map[string]float64{
		"heavy": 3.0, "moderate": 1.5, "light": 0.5, "none": 0,
	}},
	{Field: "energy_efficiency", Default: "somewhat", Scores: map[string]float64{
		"very": -1.0, "somewhat": 0, "not": 2.0,
	}},
	{Field: "renewable_energy", Default: "none", Scores: map[string]float64{
		"solar": -2.0, "wind": -2.0, "green": -1.0, "none": 0,
	}},
	{Field: "water_usage", Default: "average", Scores: map[string]float64{
		"conservative": -0.5, "average": 0, "high": 1.0,
	}},
}

var travelQuestions = []Question{
	{Field: "commute_distance", Default: "medium", Scores: map[string]float64{
		"none": 0, "short": 1.0, "medium": 3.0, "long": 6.0,
	}},
	{Field: "primary_transport", Default: "car", Scores: map[string]float64{
		"walking": 0, "bicycle": 0.1, "public": 1.0, "motorcycle": 2.0, "car": 4.0,
	}},
	{Field: "vehicle_type", Default: "petrol", Scores: map[string]float64{
		"electric": 1.5, "hybrid": 2.5, "petrol": 4.0, "diesel": 3.5, "none": 0,
	}},
	{Field: "air_travel", Default: "few", Scores: map[string]float64{
		"none": 0, "few": 1.0, "moderate": 3.0, "frequent": 6.0,
	}},
	{Field: "carpooling", Default: "sometimes", Scores: map[string]float64{
		"always": -1.0, "sometimes": -0.5, "rarely": 0, "never": 0.5,
	}},
	{Field: "ride_sharing", Default: "occasional", Scores: map[string]float64{
		"frequent": 1.5, "occasional": 0.5, "rarely": 0, "never": 0,
	}},
	{Field: "route_planning", Default: "sometimes", Scores: map[string]float64{
		"eco": -0.5, "sometimes": -0.2, "fastest": 0.5, "none": 0,
	}},
}

var foodQuestions = []Question{
	{Field: "meat_frequency", Default: "three_four", Scores: map[string]float64{
		"never": 0, "once_twice": 1.0, "three_four": 2.5, "daily": 4.0,
	}},
	{Field: "vegetarian_days", Default: "1-2", Scores: map[string]float64{
		"0": 2.0, "1-2": 1.5, "3-5": 0.8, "6-7": 0.2,
	}},
	{Field: "food_purchase", Default: "supermarket", Scores: map[string]float64{
		"local": 0.5, "supermarket": 1.0, "imported": 2.0, "online": 1.5,
	}},
	{Field: "organic_produce", Default: "sometimes", Scores: map[string]float64{
		"always": -0.5, "sometimes": -0.2, "rarely": 0, "never": 0.5,
	}},
	{Field: "eat_out_frequency", Default: "sometimes", Scores: map[string]float64{
		"never": 0, "rarely": 0.5, "sometimes": 1.0, "frequently": 2.0,
	}},
	{Field: "food_waste", Default: "little", Scores: map[string]float64{
		"none": -0.5, "little": -0.2, "some": 0.5, "lots": 1.0,
	}},
	{Field: "reusable_items", Default: "sometimes", Scores: map[string]float64{
		"always": -0.5, "mostly": -0.3, "sometimes": -0.1, "rarely": 0.5,
	}},
}

var othersQuestions = []Question{
	{Field: "shopping_frequency", Default: "occasionally", Scores: map[string]float64{
		"rarely": 0.5, "occasionally": 1.0, "monthly": 2.0, "weekly": 3.0,
	}},
	{Field: "second_hand", Default: "sometimes", Scores: map[string]float64{
		"always": -1.0, "often": -0.5, "sometimes": -0.2, "never": 0.5,
	}},
	{Field: "waste_management", Default: "recycle_only", Scores: map[string]float64{
		"zero": -1.0, "recycle_compost": -0.5, "recycle_only": -0.2, "no_recycling": 1.0,
	}},
	{Field: "device_upgrades", Default: "sometimes", Scores: map[string]float64{
		"never": 0, "rarely": 0.5, "sometimes": 1.0, "frequently": 2.0,
	}},
	{Field: "entertainment", Default: "mixed", Scores: map[string]float64{
		"outdoor": 0, "cultural": 0.5, "home": 1.0, "mixed": 0.5,
	}},
	{Field: "energy_consciousness", Default: "somewhat", Scores: map[string]float64{
		"very": -0.5, "somewhat": -0.2, "not": 0.5,
	}},
	{Field: "sustainable_products", Default: "sometimes", Scores: map[string]float64{
		"always": -0.5, "often": -0.3, "sometimes": -0.1, "rarely": 0.5,
	}},
}
