package catalog

import (
	"github.com/openrewards/cardperk/internal/domain"
)

// rate expresses "units earned per rupees spent" the way card literature
// states it, e.g. rate(1, 200) is 1 unit per ₹200.
func rate(units, rupees float64) float64 {
	return units / rupees
}

func ratePtr(r float64) *float64 {
	return &r
}

// fuelExclusions zeroes out fuel transactions, the most common exclusion.
func fuelExclusions() map[string]float64 {
	return map[string]float64{
		"5541": 0,
		"5542": 0,
	}
}

var specialCategoriesFull = []string{"Utility", "Insurance", "Government", "Education", "RealEstate"}

func specialQuestion(helper bool) domain.QuestionSpec {
	q := domain.QuestionSpec{
		Type:    domain.QuestionRadio,
		Label:   "Is this a special category transaction?",
		Name:    domain.AnswerIsSpecial,
		Options: domain.YesNoOptions,
		Default: "false",
	}
	if helper {
		q.HelperText = domain.HelperSpecialCategories
	}
	return q
}

func internationalQuestion() domain.QuestionSpec {
	return domain.QuestionSpec{
		Type:    domain.QuestionRadio,
		Label:   "Is this an international transaction?",
		Name:    domain.AnswerIsInternational,
		Options: domain.YesNoOptions,
		Default: "false",
	}
}

// Products returns the full card product catalog. Rates, precedence, caps,
// and question schemas follow each card's published reward terms.
func Products() []*domain.Product {
	return []*domain.Product{
		avios(),
		celesta(),
		clubVistaraExplorer(),
		crest(),
		duo(),
		eazyDinerPlatinum(),
		eazyDinerSignature(),
		indulge(),
		interMilesOdyssey(),
		interMilesVoyage(),
		legend(),
		nexxt(),
		pinnacle(),
		pioneerHeritage(),
		pioneerLegacy(),
		pioneerPrivate(),
		platinum(),
		platinumAuraEdge(),
		platinumRuPay(),
		samman(),
		solitaire(),
		tiger(),
	}
}

func avios() *domain.Product {
	return &domain.Product{
		ID:              "avios",
		Name:            "Avios",
		CardType:        domain.CardTypeMiles,
		Kind:            domain.KindCategorySelect,
		DefaultRate:     rate(1, 200), // 1 Avios per ₹200
		DefaultCategory: domain.CategoryOtherSpends,
		DefaultRateType: domain.RateTypeDefault,
		MCCRates:        fuelExclusions(),
		CategoryRates: map[string]float64{
			"preferredInternational":       rate(5, 200),
			"preferredInternationalOnline": rate(1, 200),
			"domesticAndOtherInternational": rate(1, 200),
			"qatarBritishAirways":          rate(2, 200),
		},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionSelect,
				Label: "Spend Category",
				Name:  domain.AnswerSpendCategory,
				Options: []domain.Option{
					{Label: "Preferred International POS", Value: "preferredInternational"},
					{Label: "Preferred International Online", Value: "preferredInternationalOnline"},
					{Label: "Domestic and Other International", Value: "domesticAndOtherInternational"},
					{Label: "Qatar Airways & British Airways", Value: "qatarBritishAirways"},
					{Label: "Other", Value: "default"},
				},
				Default: "default",
			},
		},
		AutoSelects: []domain.AutoSelect{
			// Qatar Airways / British Airways airline MCCs force the
			// partner category.
			{MCCs: []string{"3005", "3136"}, Name: domain.AnswerSpendCategory, Value: "qatarBritishAirways"},
		},
	}
}

func celesta() *domain.Product {
	return &domain.Product{
		ID:                "celesta",
		Name:              "Celesta",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindInternational,
		DefaultRate:       rate(1, 100), // 1 RP per ₹100 domestic
		DefaultCategory:   "Domestic Spends",
		DefaultRateType:   domain.RateTypeDefault,
		InternationalRate: rate(3, 100),
		RedemptionRates: map[string]float64{
			domain.RedemptionAirmiles:   1,
			domain.RedemptionCashCredit: 0.75,
		},
		Questions: []domain.QuestionSpec{internationalQuestion()},
	}
}

func clubVistaraExplorer() *domain.Product {
	return &domain.Product{
		ID:              "club-vistara-explorer",
		Name:            "Club Vistara Explorer",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindCategoryFlags,
		DefaultRate:     rate(2, 200), // 2 CV Points per ₹200
		DefaultCategory: domain.CategoryOtherSpends,
		DefaultRateType: domain.RateTypeDefault,
		FlagRates: []domain.FlagRate{
			{Flag: domain.AnswerIsVistaraSite, Rate: rate(8, 200), Category: "Vistara Website/App", RateType: "vistara"},
			{Flag: domain.AnswerIsHotelAirTravel, Rate: rate(6, 200), Category: "Hotel, Airline, Travel", RateType: "travel"},
			{Flag: domain.AnswerIsUtilityBundle, Rate: rate(1, 200), Category: "Utility, Insurance, Government, Fuel", RateType: "utility"},
		},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Spend Category",
				Name:  domain.AnswerSpendCategory,
				Options: []domain.Option{
					{Label: "Vistara Website/App", Value: "vistara"},
					{Label: "Hotel, Airline, Travel", Value: "travel"},
					{Label: "Utility, Insurance, Government, Fuel", Value: "utility"},
					{Label: "Other", Value: "other"},
				},
				Default: "other",
				Cascades: map[string]string{
					"vistara": domain.AnswerIsVistaraSite,
					"travel":  domain.AnswerIsHotelAirTravel,
					"utility": domain.AnswerIsUtilityBundle,
				},
			},
		},
	}
}

func crest() *domain.Product {
	return &domain.Product{
		ID:                "crest",
		Name:              "Crest",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindInternational,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   "Domestic Spends",
		DefaultRateType:   domain.RateTypeDefault,
		InternationalRate: rate(2.5, 100),
		RedemptionRates: map[string]float64{
			domain.RedemptionAirmiles:   1,
			domain.RedemptionCashCredit: 0.75,
		},
		Questions: []domain.QuestionSpec{internationalQuestion()},
	}
}

func duo() *domain.Product {
	return &domain.Product{
		ID:              "duo",
		Name:            "Duo",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindFlat,
		DefaultRate:     rate(1, 150),
		DefaultCategory: domain.CategoryAllSpends,
		DefaultRateType: domain.RateTypeDefault,
	}
}

func eazyDinerPlatinum() *domain.Product {
	return &domain.Product{
		ID:                "eazydiner-platinum",
		Name:              "EazyDiner Platinum",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindDining,
		DefaultRate:       rate(2, 100),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		SpecialRate:       ratePtr(rate(0.7, 100)),
		PartnerMultiplier: 2, // 2X EazyPoints
		MCCRates:          fuelExclusions(),
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "Special Category", Value: "special"},
					{Label: "EazyDiner", Value: "eazyDiner"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"special":   domain.AnswerIsSpecial,
					"eazyDiner": domain.AnswerIsEazyDiner,
				},
			},
		},
	}
}

func eazyDinerSignature() *domain.Product {
	return &domain.Product{
		ID:                  "eazydiner-signature",
		Name:                "EazyDiner Signature",
		CardType:            domain.CardTypePoints,
		Kind:                domain.KindDining,
		DefaultRate:         rate(4, 100),
		DefaultCategory:     domain.CategoryOtherSpends,
		DefaultRateType:     domain.RateTypeDefault,
		AcceleratedRate:     rate(10, 100),
		AcceleratedCategory: "Dining, Shopping & Entertainment",
		AcceleratedMCCs: []string{
			"5812", "5813", "5814", // Dining
			"5311", "5411", "5611", "5621", "5631", "5641", "5651", "5661", "5691", "5699", // Shopping
			"7832", "7922", "7929", "7991", "7996", "7998", "7999", // Entertainment
		},
		PartnerMultiplier: 3, // 3X EazyPoints
		MCCRates:          fuelExclusions(),
		Questions: []domain.QuestionSpec{
			{
				Type:    domain.QuestionRadio,
				Label:   "Is this an EazyDiner transaction?",
				Name:    domain.AnswerIsEazyDiner,
				Options: domain.YesNoOptions,
				Default: "false",
			},
		},
	}
}

func indulge() *domain.Product {
	return &domain.Product{
		ID:              "indulge",
		Name:            "Indulge",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindFlat,
		DefaultRate:     rate(1.5, 100),
		DefaultCategory: domain.CategoryAllSpends,
		DefaultRateType: domain.RateTypeDefault,
		RedemptionRates: map[string]float64{
			domain.RedemptionCashCredit: 1,
			domain.RedemptionAirmiles:   1,
		},
	}
}

func interMilesQuestions() []domain.QuestionSpec {
	return []domain.QuestionSpec{
		{
			Type:  domain.QuestionRadio,
			Label: "Card Variant",
			Name:  domain.AnswerCardVariant,
			Options: []domain.Option{
				{Label: "American Express", Value: "amex"},
				{Label: "Visa", Value: "visa"},
			},
			Default: "visa",
		},
		{
			Type:    domain.QuestionRadio,
			Label:   "Is this a weekend transaction?",
			Name:    domain.AnswerIsWeekend,
			Options: domain.YesNoOptions,
			Default: "false",
		},
		{
			Type:    domain.QuestionRadio,
			Label:   "Is this a travel transaction?",
			Name:    domain.AnswerIsTravel,
			Options: domain.YesNoOptions,
			Default: "false",
		},
	}
}

func interMilesOdyssey() *domain.Product {
	return &domain.Product{
		ID:              "intermiles-odyssey",
		Name:            "InterMiles Odyssey",
		CardType:        domain.CardTypeMiles,
		Kind:            domain.KindVariantDay,
		DefaultCategory: domain.CategoryOtherSpends,
		TravelCategory:  "Travel Spends",
		DefaultVariant:  "visa",
		VariantDefaultRates: map[string]domain.DayRates{
			"amex": {Weekday: rate(4, 100), Weekend: rate(6, 100)},
			"visa": {Weekday: rate(3, 100), Weekend: rate(4, 100)},
		},
		VariantTravelRates: map[string]domain.DayRates{
			"amex": {Weekday: rate(8, 100), Weekend: rate(12, 100)},
			"visa": {Weekday: rate(6, 100), Weekend: rate(8, 100)},
		},
		Capping:   &domain.Capping{MaxQuantity: 75000, Period: "year"},
		Questions: interMilesQuestions(),
	}
}

func interMilesVoyage() *domain.Product {
	return &domain.Product{
		ID:              "intermiles-voyage",
		Name:            "InterMiles Voyage",
		CardType:        domain.CardTypeMiles,
		Kind:            domain.KindVariantDay,
		DefaultCategory: domain.CategoryOtherSpends,
		TravelCategory:  "Travel Spends",
		DefaultVariant:  "visa",
		VariantDefaultRates: map[string]domain.DayRates{
			"amex": {Weekday: rate(3, 100), Weekend: rate(4, 100)},
			"visa": {Weekday: rate(2, 100), Weekend: rate(3, 100)},
		},
		VariantTravelRates: map[string]domain.DayRates{
			"amex": {Weekday: rate(6, 100), Weekend: rate(8, 100)},
			"visa": {Weekday: rate(4, 100), Weekend: rate(6, 100)},
		},
		Capping:   &domain.Capping{MaxQuantity: 50000, Period: "year"},
		Questions: interMilesQuestions(),
	}
}

func legend() *domain.Product {
	return &domain.Product{
		ID:                "legend",
		Name:              "Legend",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindWeekendSpecial,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   "Weekday Spend",
		DefaultRateType:   domain.RateTypeDefault,
		WeekendRate:       rate(2, 100),
		WeekendCategory:   "Weekend Spend",
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: []string{"Utility", "Insurance", "Government", "Education"},
		MCCRates:          fuelExclusions(),
		RedemptionRates: map[string]float64{
			domain.RedemptionNonCash: 0.75,
			domain.RedemptionCash:    0.50,
		},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "Weekend", Value: "weekend"},
					{Label: "Special Category", Value: "special"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"weekend": domain.AnswerIsWeekend,
					"special": domain.AnswerIsSpecial,
				},
			},
		},
	}
}

func nexxt() *domain.Product {
	return &domain.Product{
		ID:                "nexxt",
		Name:              "Nexxt",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindSpecial,
		DefaultRate:       rate(1, 150),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		SpecialRate:       ratePtr(rate(0.7, 150)),
		SpecialCategories: specialCategoriesFull,
		MCCRates:          fuelExclusions(),
		Questions:         []domain.QuestionSpec{specialQuestion(true)},
	}
}

func pinnacle() *domain.Product {
	return &domain.Product{
		ID:              "pinnacle",
		Name:            "Pinnacle",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindCategoryFlags,
		DefaultRate:     rate(1, 100),
		DefaultCategory: domain.CategoryOtherSpends,
		DefaultRateType: domain.RateTypeDefault,
		MCCRates:        fuelExclusions(),
		FlagRates: []domain.FlagRate{
			{Flag: domain.AnswerIsEcommerce, Rate: rate(2.5, 100), Category: "E-commerce", RateType: "ecommerce"},
			{Flag: domain.AnswerIsEcomTravel, Rate: rate(1.5, 100), Category: "E-com Travel and Airline", RateType: "ecomTravelAirline"},
		},
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: []string{"Utility", "Insurance", "Government", "Education"},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "E-commerce", Value: "ecommerce"},
					{Label: "E-com Travel/Airline", Value: "ecomTravelAirline"},
					{Label: "Special Category", Value: "special"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"ecommerce":         domain.AnswerIsEcommerce,
					"ecomTravelAirline": domain.AnswerIsEcomTravel,
					"special":           domain.AnswerIsSpecial,
				},
			},
		},
	}
}

func pioneerHeritage() *domain.Product {
	return &domain.Product{
		ID:                "pioneer-heritage",
		Name:              "Pioneer Heritage",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindInternational,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   "Domestic Spends",
		DefaultRateType:   domain.RateTypeDefault,
		InternationalRate: rate(2.5, 100),
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: []string{"Utility", "Government", "Education"},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "International", Value: "international"},
					{Label: "Special Category", Value: "special"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"international": domain.AnswerIsInternational,
					"special":       domain.AnswerIsSpecial,
				},
			},
		},
	}
}

func pioneerLegacy() *domain.Product {
	return &domain.Product{
		ID:                "pioneer-legacy",
		Name:              "Pioneer Legacy",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindWeekendSpecial,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   "Weekday Spends",
		DefaultRateType:   domain.RateTypeDefault,
		WeekendRate:       rate(2, 100),
		WeekendCategory:   "Weekend Spends",
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: []string{"Utility", "Government", "Education"},
		MCCRates:          fuelExclusions(),
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "Weekend", Value: "weekend"},
					{Label: "Special Category", Value: "special"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"weekend": domain.AnswerIsWeekend,
					"special": domain.AnswerIsSpecial,
				},
			},
		},
	}
}

func pioneerPrivate() *domain.Product {
	return &domain.Product{
		ID:                "pioneer-private",
		Name:              "Pioneer Private",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindSpecial,
		DefaultRate:       rate(3, 100),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: []string{"Utility", "Government", "Education"},
		Questions:         []domain.QuestionSpec{specialQuestion(false)},
	}
}

func platinum() *domain.Product {
	return &domain.Product{
		ID:                "platinum",
		Name:              "Platinum",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindSpecial,
		DefaultRate:       rate(1.5, 150),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		SpecialRate:       ratePtr(rate(0.7, 150)),
		SpecialCategories: specialCategoriesFull,
		MCCRates:          fuelExclusions(),
		Questions:         []domain.QuestionSpec{specialQuestion(true)},
	}
}

func platinumAuraEdge() *domain.Product {
	return &domain.Product{
		ID:              "platinum-aura-edge",
		Name:            "Platinum Aura Edge",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindPlanMatrix,
		DefaultRate:     rate(0.5, 100),
		DefaultCategory: domain.CategoryOtherSpends,
		DefaultRateType: domain.RateTypeDefault,
		MCCRates:        fuelExclusions(),
		PlanRates: map[string][]domain.PlanRate{
			"Shop": {
				{Category: "Department Stores", Rate: rate(4, 100)},
				{Category: "Consumer Durables", Rate: rate(2, 100)},
				{Category: "Restaurants", Rate: rate(1.5, 100)},
				{Category: "Books", Rate: rate(1.5, 100)},
			},
			"Home": {
				{Category: "Grocery", Rate: rate(4, 100)},
				{Category: "Cellphone Bills", Rate: rate(1.4, 100)},
				{Category: "Electricity Bills", Rate: rate(1.4, 100)},
				{Category: "Insurance Premium", Rate: rate(1.4, 100)},
				{Category: "Medical", Rate: rate(1.5, 100)},
			},
			"Travel": {
				{Category: "Hotels", Rate: rate(4, 100)},
				{Category: "Airline Tickets", Rate: rate(2.5, 100)},
				{Category: "Car Rental", Rate: rate(1.5, 100)},
				{Category: "Rail Tickets", Rate: rate(1.5, 100)},
			},
			"Party": {
				{Category: "Restaurants", Rate: rate(4, 100)},
				{Category: "Department Stores", Rate: rate(2, 100)},
				{Category: "Bars and Pubs", Rate: rate(2, 100)},
				{Category: "Movie Tickets", Rate: rate(1.5, 100)},
			},
		},
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: specialCategoriesFull,
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionSelect,
				Label: "Select Reward Plan",
				Name:  domain.AnswerSelectedPlan,
				Options: []domain.Option{
					{Label: "Shop Plan", Value: "Shop"},
					{Label: "Home Plan", Value: "Home"},
					{Label: "Travel Plan", Value: "Travel"},
					{Label: "Party Plan", Value: "Party"},
				},
			},
			{
				Type:            domain.QuestionSelect,
				Label:           "Select Category",
				Name:            domain.AnswerSelectedCategory,
				OptionsFromPlan: true,
				DependsOn:       domain.AnswerSelectedPlan,
			},
			specialQuestion(false),
		},
	}
}

func platinumRuPay() *domain.Product {
	return &domain.Product{
		ID:                "platinum-rupay",
		Name:              "Platinum RuPay",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindUPI,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		UPIRate:           rate(2, 100),
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: specialCategoriesFull,
		MCCRates:          fuelExclusions(),
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "UPI", Value: "upi"},
					{Label: "Special Category", Value: "special"},
					{Label: "Other", Value: "other"},
				},
				Default:    "other",
				HelperText: domain.HelperSpecialCategories,
				Cascades: map[string]string{
					"upi":     domain.AnswerIsUPI,
					"special": domain.AnswerIsSpecial,
				},
			},
		},
	}
}

func samman() *domain.Product {
	return &domain.Product{
		ID:               "samman",
		Name:             "Samman",
		CardType:         domain.CardTypeCashback,
		Kind:             domain.KindCashback,
		DefaultRate:      0.01, // 1% cashback
		DefaultCategory:  domain.CategoryAllSpends,
		DefaultRateType:  domain.RateTypeDefault,
		MaxEligibleSpend: 20000, // per statement cycle
		MaxCashback:      200,
	}
}

func solitaire() *domain.Product {
	return &domain.Product{
		ID:                "solitaire",
		Name:              "Solitaire",
		CardType:          domain.CardTypePoints,
		Kind:              domain.KindSpecial,
		DefaultRate:       rate(1, 100),
		DefaultCategory:   domain.CategoryOtherSpends,
		DefaultRateType:   domain.RateTypeDefault,
		SpecialRate:       ratePtr(rate(0.7, 100)),
		SpecialCategories: specialCategoriesFull,
		MCCRates:          fuelExclusions(),
		// 5,000 bonus points for spending ₹1 lakh in the first 30 days.
		Bonus: &domain.SpendBonus{Quantity: 5000, MinTotalSpend: 100000},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionRadio,
				Label: "Transaction Type",
				Name:  domain.AnswerTransactionType,
				Options: []domain.Option{
					{Label: "Special Category", Value: "special"},
					{Label: "First 30 Days", Value: "firstMonth"},
					{Label: "Other", Value: "other"},
				},
				Default: "other",
				Cascades: map[string]string{
					"special":    domain.AnswerIsSpecial,
					"firstMonth": domain.AnswerIsFirstMonth,
				},
			},
			{
				Type:  domain.QuestionSelect,
				Label: "Total spend in first 30 days",
				Name:  domain.AnswerTotalSpend,
				Options: []domain.Option{
					{Label: "Up to ₹100,000", Value: "0"},
					{Label: "₹100,000 or more", Value: "100000"},
				},
				Default:     "0",
				DependsOn:   domain.AnswerTransactionType,
				VisibleWhen: "firstMonth",
			},
		},
	}
}

func tiger() *domain.Product {
	return &domain.Product{
		ID:              "tiger",
		Name:            "Tiger",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindTiered,
		DefaultRate:     rate(1, 100),
		DefaultCategory: domain.CategoryOtherSpends,
		DefaultRateType: domain.RateTypeDefault,
		MCCRates:        fuelExclusions(),
		// No rewards at all on special categories.
		SpecialRate:       ratePtr(0),
		SpecialCategories: specialCategoriesFull,
		Tiers: []domain.SpendTier{
			{Threshold: 100000, Multiplier: 1},
			{Threshold: 250000, Multiplier: 2},
			{Threshold: 500000, Multiplier: 4},
			{Threshold: -1, Multiplier: 6}, // unbounded top tier
		},
		RedemptionRates: map[string]float64{
			domain.RedemptionAirmiles:   1.2,
			domain.RedemptionCashCredit: 0.4,
		},
		Questions: []domain.QuestionSpec{
			{
				Type:  domain.QuestionSelect,
				Label: "Annual Spend so far",
				Name:  domain.AnswerAnnualSpend,
				Options: []domain.Option{
					{Label: "Up to ₹100,000", Value: "0"},
					{Label: "₹100,001 - ₹250,000", Value: "100000"},
					{Label: "₹250,001 - ₹500,000", Value: "250000"},
					{Label: "Above ₹500,000", Value: "500000"},
				},
				Default: "0",
			},
			specialQuestion(false),
		},
	}
}
