package filename

// makeAliases maps lower-cased OEM brand tokens to their display names. Its
// keys double as the OEM brand set used for dialect detection.
var makeAliases = map[string]string{
	"alfa":       "Alfa Romeo",
	"alfaromeo":  "Alfa Romeo",
	"audi":       "Audi",
	"benz":       "Mercedes-Benz",
	"bmw":        "BMW",
	"chevrolet":  "Chevrolet",
	"chrysler":   "Chrysler",
	"citroen":    "Citroen",
	"cupra":      "Cupra",
	"dacia":      "Dacia",
	"daf":        "DAF",
	"dodge":      "Dodge",
	"fiat":       "Fiat",
	"fomoco":     "Ford",
	"ford":       "Ford",
	"gm":         "GM",
	"honda":      "Honda",
	"hyundai":    "Hyundai",
	"isuzu":      "Isuzu",
	"iveco":      "Iveco",
	"jaguar":     "Jaguar",
	"jeep":       "Jeep",
	"jlr":        "Jaguar Land Rover",
	"kia":        "Kia",
	"landrover":  "Land Rover",
	"lexus":      "Lexus",
	"lr":         "Land Rover",
	"man":        "MAN",
	"mazda":      "Mazda",
	"mb":         "Mercedes-Benz",
	"mercedes":   "Mercedes-Benz",
	"mini":       "Mini",
	"mitsubishi": "Mitsubishi",
	"nissan":     "Nissan",
	"opel":       "Opel",
	"peugeot":    "Peugeot",
	"porsche":    "Porsche",
	"psa":        "PSA",
	"renault":    "Renault",
	"scania":     "Scania",
	"seat":       "Seat",
	"skoda":      "Skoda",
	"smart":      "Smart",
	"subaru":     "Subaru",
	"suzuki":     "Suzuki",
	"toyota":     "Toyota",
	"vauxhall":   "Vauxhall",
	"vag":        "Volkswagen",
	"volkswagen": "Volkswagen",
	"volvo":      "Volvo",
	"vw":         "Volkswagen",
}

// ecuBrandTokens are the lower-cased whole-segment ECU manufacturer tokens
// of the Flex dialect.
var ecuBrandTokens = map[string]struct{}{
	"bosch":       {},
	"continental": {},
	"delco":       {},
	"delphi":      {},
	"denso":       {},
	"hitachi":     {},
	"kefico":      {},
	"keihin":      {},
	"marelli":     {},
	"sagem":       {},
	"siemens":     {},
	"temic":       {},
	"transtron":   {},
	"valeo":       {},
	"visteon":     {},
}

// legacyECUMarkers start ECU accumulation in Legacy names when any of them
// occurs inside a segment. Matching is case-sensitive.
var legacyECUMarkers = []string{
	"Bosch", "Siemens", "Delphi", "Continental",
	"Marelli", "Valeo", "Denso", "PCR", "EDC", "MED",
}

// legacyStopTokens end model and ECU accumulation in Legacy names.
var legacyStopTokens = map[string]struct{}{
	"OBD":     {},
	"BENCH":   {},
	"BOOT":    {},
	"NR":      {},
	"OR":      {},
	"VIRTUAL": {},
	"VR":      {},
}

// unitSuffixes mark power ratings such as "105hp" or a bare "hp" segment.
var unitSuffixes = []string{"hp", "ps", "kw"}
