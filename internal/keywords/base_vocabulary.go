package keywords

// BaseVocabulary returns the built-in Turkish/English word lists shared by
// every marketplace. Per-marketplace additions are merged on top via
// Vocabulary.Merge. All entries are already in normalized form.
func BaseVocabulary() *Vocabulary {
	return &Vocabulary{
		StopWords:    baseStopWords(),
		Synonyms:     baseSynonyms(),
		Genders:      baseGenders(),
		ProductTypes: baseProductTypes(),
		Brands:       baseBrands(),
	}
}

func baseStopWords() map[string]struct{} {
	words := []string{
		// Turkish fillers and conjunctions
		"ve", "ile", "bir", "bu", "sade", "icin", "gibi", "olan", "cok",
		"daha", "yeni", "orjinal", "orijinal", "uygun", "ozel", "kaliteli",
		"urun", "urunu", "adet", "set", "model", "renk", "renkli", "beden",
		// English fillers
		"the", "and", "for", "with", "new", "best", "free", "item",
		"original", "quality", "piece", "color", "size", "style", "pcs",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func baseSynonyms() map[string][]string {
	return map[string][]string{
		// apparel
		"elbise":   {"dress"},
		"dress":    {"elbise"},
		"tisort":   {"tshirt", "t shirt", "tee"},
		"tshirt":   {"tisort"},
		"gomlek":   {"shirt"},
		"shirt":    {"gomlek"},
		"pantolon": {"pants", "trousers"},
		"pants":    {"pantolon"},
		"etek":     {"skirt"},
		"skirt":    {"etek"},
		"ceket":    {"jacket"},
		"jacket":   {"ceket"},
		"mont":     {"coat", "parka"},
		"coat":     {"mont"},
		"kazak":    {"sweater", "pullover"},
		"sweater":  {"kazak"},
		// footwear
		"ayakkabi": {"shoes", "shoe"},
		"shoes":    {"ayakkabi"},
		"sneaker":  {"spor ayakkabi"},
		"bot":      {"boots"},
		"boots":    {"bot"},
		"terlik":   {"slippers"},
		// bags and accessories
		"canta":    {"bag", "handbag"},
		"bag":      {"canta"},
		"backpack": {"sirt cantasi"},
		"cuzdan":   {"wallet"},
		"wallet":   {"cuzdan"},
		"saat":     {"watch"},
		"watch":    {"saat"},
		"gozluk":   {"glasses", "sunglasses"},
		"kemer":    {"belt"},
		"sapka":    {"hat", "cap"},
		// electronics
		"telefon":    {"phone", "smartphone"},
		"phone":      {"telefon"},
		"bilgisayar": {"laptop", "computer", "notebook"},
		"laptop":     {"bilgisayar", "notebook"},
		"kulaklik":   {"headphones", "earphones"},
		"headphones": {"kulaklik"},
		"sarj":       {"charger"},
		"charger":    {"sarj", "sarj aleti"},
		"tablet":     {"tablet pc"},
		"televizyon": {"tv"},
		"tv":         {"televizyon"},
		"kamera":     {"camera"},
		"camera":     {"kamera"},
		"hoparlor":   {"speaker"},
		"klavye":     {"keyboard"},
		"fare":       {"mouse"},
		// home
		"hali":     {"carpet", "rug"},
		"perde":    {"curtain"},
		"yastik":   {"pillow", "cushion"},
		"nevresim": {"duvet cover", "bedding"},
		"tencere":  {"pot", "cookware"},
		"bardak":   {"glass", "cup"},
	}
}

func baseGenders() map[string][]string {
	return map[string][]string{
		"kadin":  {"bayan", "women", "woman", "kiz", "female", "ladies"},
		"erkek":  {"bay", "men", "man", "male", "mens"},
		"unisex": {"unisex"},
		"cocuk":  {"kids", "kid", "child", "children", "cocuklar"},
		"bebek":  {"baby", "bebe", "infant"},
	}
}

func baseProductTypes() map[string]struct{} {
	words := []string{
		// apparel
		"elbise", "dress", "tisort", "tshirt", "gomlek", "shirt",
		"pantolon", "pants", "jean", "sort", "etek", "skirt", "ceket",
		"jacket", "mont", "coat", "kazak", "sweater", "hirka", "bluz",
		"esofman", "pijama", "mayo", "bikini", "corap", "atlet", "yelek",
		"tulum", "takim",
		// footwear
		"ayakkabi", "shoes", "sneaker", "bot", "boots", "cizme", "sandalet",
		"terlik", "babet", "topuklu",
		// bags and accessories
		"canta", "bag", "backpack", "cuzdan", "wallet", "saat", "watch",
		"gozluk", "kemer", "sapka", "bileklik", "kolye", "yuzuk", "kupe",
		"bere", "atki", "eldiven", "semsiye",
		// electronics
		"telefon", "phone", "smartphone", "bilgisayar", "laptop", "notebook",
		"tablet", "kulaklik", "headphones", "sarj", "charger", "kablo",
		"televizyon", "monitor", "kamera", "camera", "hoparlor", "speaker",
		"klavye", "keyboard", "fare", "mouse", "konsol", "powerbank", "kilif",
		// home and kitchen
		"hali", "perde", "yastik", "nevresim", "battaniye", "havlu",
		"tencere", "tava", "bardak", "tabak", "catal", "bicak", "kasik",
		"lamba", "avize", "ayna", "sandalye", "masa", "koltuk", "dolap",
		// personal care and misc
		"parfum", "sampuan", "krem", "ruj", "maskara", "oyuncak", "kitap",
		"defter", "kalem", "bisiklet", "top", "dumbbell", "mat", "cadir",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func baseBrands() map[string][]string {
	return map[string][]string{
		// phone brands strongly predict phone categories
		"iphone":  {"cep telefonu", "telefon", "akilli telefon"},
		"apple":   {"cep telefonu", "telefon", "bilgisayar", "tablet"},
		"samsung": {"cep telefonu", "telefon", "televizyon", "tablet"},
		"xiaomi":  {"cep telefonu", "telefon"},
		"huawei":  {"cep telefonu", "telefon", "tablet"},
		"oppo":    {"cep telefonu", "telefon"},
		// computing
		"lenovo":   {"bilgisayar", "laptop", "notebook", "tablet"},
		"asus":     {"bilgisayar", "laptop", "notebook", "monitor"},
		"hp":       {"bilgisayar", "laptop", "notebook", "yazici"},
		"macbook":  {"bilgisayar", "laptop", "notebook"},
		"logitech": {"klavye", "fare", "mouse", "kulaklik"},
		// gaming
		"playstation": {"konsol", "oyun"},
		"xbox":        {"konsol", "oyun"},
		"nintendo":    {"konsol", "oyun"},
		// audio
		"jbl":  {"hoparlor", "kulaklik", "speaker"},
		"sony": {"kulaklik", "televizyon", "konsol", "kamera"},
	}
}
