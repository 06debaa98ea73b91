// Package tracks holds the Mario Kart 8 Deluxe track catalog, the nick search
// used to recognise a track typed into chat, and the per-channel memory of the
// latest track seen.
package tracks

// Track is one course of the catalog. ID is its index in All and is what
// sessions persist.
type Track struct {
	ID   int
	Abbr string
	Name string
	Cup  string
}

type def struct{ abbr, name string }

var cups = []struct {
	name   string
	tracks [4]def
}{
	{"Mushroom", [4]def{{"MKS", "Mario Kart Stadium"}, {"WP", "Water Park"}, {"SSC", "Sweet Sweet Canyon"}, {"TR", "Thwomp Ruins"}}},
	{"Flower", [4]def{{"MC", "Mario Circuit"}, {"TH", "Toad Harbor"}, {"TM", "Twisted Mansion"}, {"SGF", "Shy Guy Falls"}}},
	{"Star", [4]def{{"SA", "Sunshine Airport"}, {"DS", "Dolphin Shoals"}, {"Ed", "Electrodrome"}, {"MW", "Mount Wario"}}},
	{"Special", [4]def{{"CC", "Cloudtop Cruise"}, {"BDD", "Bone-Dry Dunes"}, {"BC", "Bowser's Castle"}, {"RR", "Rainbow Road"}}},
	{"Shell", [4]def{{"rMMM", "Wii Moo Moo Meadows"}, {"rMC", "GBA Mario Circuit"}, {"rCCB", "DS Cheep Cheep Beach"}, {"rTT", "N64 Toad's Turnpike"}}},
	{"Banana", [4]def{{"rDDD", "GCN Dry Dry Desert"}, {"rDP3", "SNES Donut Plains 3"}, {"rRRy", "N64 Royal Raceway"}, {"rDKJ", "3DS DK Jungle"}}},
	{"Leaf", [4]def{{"rWS", "DS Wario Stadium"}, {"rSL", "GCN Sherbet Land"}, {"rMP", "3DS Music Park"}, {"rYV", "N64 Yoshi Valley"}}},
	{"Lightning", [4]def{{"rTTC", "DS Tick-Tock Clock"}, {"rPPS", "3DS Piranha Plant Slide"}, {"rGV", "Wii Grumble Volcano"}, {"rRRd", "N64 Rainbow Road"}}},
	{"Egg", [4]def{{"dYC", "GCN Yoshi Circuit"}, {"dEA", "Excitebike Arena"}, {"dDD", "Dragon Driftway"}, {"dMC", "Mute City"}}},
	{"Triforce", [4]def{{"dWGM", "Wii Wario's Gold Mine"}, {"dRR", "SNES Rainbow Road"}, {"dIIO", "Ice Ice Outpost"}, {"dHC", "Hyrule Circuit"}}},
	{"Crossing", [4]def{{"dBP", "GCN Baby Park"}, {"dCL", "GBA Cheese Land"}, {"dWW", "Wild Woods"}, {"dAC", "Animal Crossing"}}},
	{"Bell", [4]def{{"dNBC", "3DS Neo Bowser City"}, {"dRiR", "GBA Ribbon Road"}, {"dSBS", "Super Bell Subway"}, {"dBB", "Big Blue"}}},
	{"Golden Dash", [4]def{{"bPP", "Tour Paris Promenade"}, {"bTC", "3DS Toad Circuit"}, {"bCMo", "N64 Choco Mountain"}, {"bCMa", "Wii Coconut Mall"}}},
	{"Lucky Cat", [4]def{{"bTB", "Tour Tokyo Blur"}, {"bSR", "DS Shroom Ridge"}, {"bSG", "GBA Sky Garden"}, {"bNH", "Ninja Hideaway"}}},
	{"Turnip", [4]def{{"bNYM", "Tour New York Minute"}, {"bMC3", "SNES Mario Circuit 3"}, {"bKD", "N64 Kalimari Desert"}, {"bWP", "DS Waluigi Pinball"}}},
	{"Propeller", [4]def{{"bSS", "Tour Sydney Sprint"}, {"bSL", "GBA Snow Land"}, {"bMG", "Wii Mushroom Gorge"}, {"bSHS", "Sky-High Sundae"}}},
	{"Rock", [4]def{{"bLL", "Tour London Loop"}, {"bBL", "GBA Boo Lake"}, {"bRRM", "3DS Rock Rock Mountain"}, {"bMT", "Wii Maple Treeway"}}},
	{"Moon", [4]def{{"bBB", "Tour Berlin Byways"}, {"bPG", "DS Peach Gardens"}, {"bMM", "Merry Mountain"}, {"bRR7", "3DS Rainbow Road"}}},
	{"Fruit", [4]def{{"bAD", "Tour Amsterdam Drift"}, {"bRP", "GBA Riverside Park"}, {"bDKS", "Wii DK Summit"}, {"bYI", "Yoshi's Island"}}},
	{"Boomerang", [4]def{{"bBR", "Tour Bangkok Rush"}, {"bMC", "DS Mario Circuit"}, {"bWS", "GCN Waluigi Stadium"}, {"bSSy", "Tour Singapore Speedway"}}},
	{"Feather", [4]def{{"bAtD", "Tour Athens Dash"}, {"bDC", "GCN Daisy Cruiser"}, {"bMH", "Wii Moonview Highway"}, {"bSCS", "Squeaky Clean Sprint"}}},
	{"Cherry", [4]def{{"bLAL", "Tour Los Angeles Laps"}, {"bSW", "GBA Sunset Wilds"}, {"bKC", "Wii Koopa Cape"}, {"bVV", "Tour Vancouver Velocity"}}},
	{"Acorn", [4]def{{"bRA", "Tour Rome Avanti"}, {"bDKM", "GCN DK Mountain"}, {"bDCt", "Wii Daisy Circuit"}, {"bPPC", "Piranha Plant Cove"}}},
	{"Spiny", [4]def{{"bMD", "Tour Madrid Drive"}, {"bRIW", "3DS Rosalina's Ice World"}, {"bBC3", "SNES Bowser Castle 3"}, {"bRRw", "Wii Rainbow Road"}}},
}

// All lists every track in cup order.
var All = func() []Track {
	all := make([]Track, 0, len(cups)*4)
	for _, c := range cups {
		for _, d := range c.tracks {
			all = append(all, Track{ID: len(all), Abbr: d.abbr, Name: d.name, Cup: c.name})
		}
	}
	return all
}()

// ByID returns the track with the given id.
func ByID(id int) (Track, bool) {
	if id < 0 || id >= len(All) {
		return Track{}, false
	}
	return All[id], true
}

// Label is the short form shown on boards: "ABBR".
func Label(id *int) string {
	if id == nil {
		return ""
	}
	t, ok := ByID(*id)
	if !ok {
		return ""
	}
	return t.Abbr
}
