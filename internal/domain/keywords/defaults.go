// Package keywords holds the built-in multilingual search vocabulary and
// language helpers used when no cached or caller-provided keyword set is
// available.
package keywords

import (
	"sort"
	"strings"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// languageAliases maps full language names onto the ISO codes used as the
// canonical keys.
var languageAliases = map[string]string{
	"english":   "en",
	"russian":   "ru",
	"polish":    "pl",
	"romanian":  "ro",
	"czech":     "cs",
	"dutch":     "nl",
	"spanish":   "es",
	"italian":   "it",
	"swedish":   "sv",
	"norwegian": "no",
	"finnish":   "fi",
}

// defaultSets is the built-in search vocabulary per language.  Include
// terms name the anomalous-energy research field; exclude terms weed out
// the automotive ignition patents that dominate raw results.
var defaultSets = map[string]patent.KeywordSet{
	"en": {
		Language: "en",
		Include: []string{
			"anomalous heat", "excess energy", "over-unity", "cold fusion",
			"LENR", "LANR", "transmutation", "plasma vortex", "plasmoid",
			"excess enthalpy", "non-chemical heat", "lattice assisted",
			"condensed matter nuclear", "Rydberg matter",
		},
		Exclude: []string{
			"spark plug", "ignition system", "internal combustion",
			"automotive", "engine", "combustion chamber",
			"fuel injection", "cylinder head", "piston",
		},
	},
	"ru": {
		Language: "ru",
		Include: []string{
			"аномальное тепловыделение", "избыточное энерговыделение",
			"холодный синтез", "холодный ядерный синтез",
			"трансмутация элементов", "плазменный вихрь",
			"тлеющий разряд", "электролизная плазма",
		},
		Exclude: []string{
			"свеча зажигания", "система зажигания", "внутреннего сгорания",
			"автомобильный", "двигатель", "камера сгорания",
		},
	},
	"pl": {
		Language: "pl",
		Include: []string{
			"anomalne ciepło", "nadmiar energii", "ponadjednostkowy", "zimna fuzja",
			"LENR", "LANR", "transmutacja", "wir plazmowy", "plazmoid",
			"nadmiar entalpii", "ciepło niechemiczne", "wspomagany siecią",
			"skondensowana materia jądrowa", "materia Rydberga",
		},
		Exclude: []string{
			"świeca zapłonowa", "układ zapłonowy", "spalanie wewnętrzne",
			"motoryzacyjny", "silnik", "komora spalania",
			"wtrysk paliwa", "głowica cylindra", "tłok",
		},
	},
	"ro": {
		Language: "ro",
		Include: []string{
			"căldură anomală", "energie în exces", "peste-unitate", "fuziune rece",
			"LENR", "LANR", "transmutare", "vortex de plasmă", "plazmoid",
			"entalpie în exces", "căldură non-chimică", "asistat de rețea",
			"materie nucleară condensată", "materie Rydberg",
		},
		Exclude: []string{
			"bujie", "sistem de aprindere", "combustie internă",
			"automotive", "motor", "cameră de ardere",
			"injecție de combustibil", "chiuloasă", "piston",
		},
	},
	"cs": {
		Language: "cs",
		Include: []string{
			"anomální teplo", "přebytek energie", "nad-jednotkový", "studená fúze",
			"LENR", "LANR", "transmutace", "plazmový vír", "plazmoid",
			"přebytek entalpie", "nechemické teplo", "mřížkou asistovaný",
			"kondenzovaná jaderná hmota", "Rydbergova hmota",
		},
		Exclude: []string{
			"zapalovací svíčka", "zapalovací systém", "vnitřní spalování",
			"automobilový", "motor", "spalovací komora",
			"vstřikování paliva", "hlava válce", "píst",
		},
	},
	"nl": {
		Language: "nl",
		Include: []string{
			"afwijkende warmte", "overtollige energie", "boven-eenheid", "koude fusie",
			"LENR", "LANR", "transmutatie", "plasma vortex", "plasmoïde",
			"overtollige enthalpie", "niet-chemische warmte", "rooster-ondersteund",
			"gecondenseerde materie nucleair", "Rydberg-materie",
		},
		Exclude: []string{
			"bougie", "ontstekingssysteem", "interne verbranding",
			"automobiel", "motor", "verbrandingskamer",
			"brandstofinjectie", "cilinderkop", "zuiger",
		},
	},
	"es": {
		Language: "es",
		Include: []string{
			"calor anómalo", "energía excedente", "sobre-unidad", "fusión fría",
			"LENR", "LANR", "transmutación", "vórtice de plasma", "plasmoide",
			"entalpía excedente", "calor no químico", "asistido por red",
			"materia nuclear condensada", "materia de Rydberg",
		},
		Exclude: []string{
			"bujía", "sistema de encendido", "combustión interna",
			"automotriz", "motor", "cámara de combustión",
			"inyección de combustible", "culata", "pistón",
		},
	},
	"it": {
		Language: "it",
		Include: []string{
			"calore anomalo", "energia in eccesso", "sovra-unità", "fusione fredda",
			"LENR", "LANR", "trasmutazione", "vortice di plasma", "plasmoide",
			"entalpia in eccesso", "calore non chimico", "assistito da reticolo",
			"materia nucleare condensata", "materia di Rydberg",
		},
		Exclude: []string{
			"candela", "sistema di accensione", "combustione interna",
			"automobilistico", "motore", "camera di combustione",
			"iniezione di carburante", "testata", "pistone",
		},
	},
	"sv": {
		Language: "sv",
		Include: []string{
			"anomal värme", "överskottsenergi", "över-enhet", "kall fusion",
			"LENR", "LANR", "transmutation", "plasmavortex", "plasmoid",
			"överskottsentalpi", "icke-kemisk värme", "gitterassisterad",
			"kondenserad materiens kärnfysik", "Rydberg-materia",
		},
		Exclude: []string{
			"tändstift", "tändsystem", "förbränningsmotor",
			"fordon", "motor", "förbränningskammare",
			"bränsleinsprutning", "topplock", "kolv",
		},
	},
	"no": {
		Language: "no",
		Include: []string{
			"anomal varme", "overskuddsenergi", "over-enhet", "kald fusjon",
			"LENR", "LANR", "transmutasjon", "plasmavorteks", "plasmoid",
			"overskuddsentalpi", "ikke-kjemisk varme", "gitterassistert",
			"kondensert materie kjernefysikk", "Rydberg-materie",
		},
		Exclude: []string{
			"tennplugg", "tenningssystem", "forbrenningsmotor",
			"bilindustri", "motor", "forbrenningskammer",
			"drivstoffinnsprøytning", "topplokk", "stempel",
		},
	},
	"fi": {
		Language: "fi",
		Include: []string{
			"poikkeava lämpö", "ylimääräinen energia", "yli-yksikkö", "kylmä fuusio",
			"LENR", "LANR", "transmutaatio", "plasmapyörre", "plasmoidi",
			"ylimääräinen entalpia", "ei-kemiallinen lämpö", "hilalla avustettu",
			"tiivistynyt aineen ydinfysiikka", "Rydberg-aine",
		},
		Exclude: []string{
			"sytytystulppa", "syttymisjärjestelmä", "sisäinen palaminen",
			"autoteollisuus", "moottori", "palotila",
			"polttoaineen ruiskutus", "sylinterinkansi", "mäntä",
		},
	},
}

// Normalize maps a language name or code onto the canonical ISO code.
// Unrecognised inputs are returned lower-cased unchanged.
func Normalize(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if code, ok := languageAliases[l]; ok {
		return code
	}
	return l
}

// DefaultSet returns a copy of the built-in keyword set for lang.  The
// second return value is false when the language has no built-in set.
func DefaultSet(lang string) (patent.KeywordSet, bool) {
	set, ok := defaultSets[Normalize(lang)]
	if !ok {
		return patent.KeywordSet{}, false
	}
	out := patent.KeywordSet{
		Language: set.Language,
		Include:  append([]string(nil), set.Include...),
		Exclude:  append([]string(nil), set.Exclude...),
	}
	return out, true
}

// Languages returns the sorted list of language codes with built-in sets.
func Languages() []string {
	out := make([]string, 0, len(defaultSets))
	for l := range defaultSets {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
