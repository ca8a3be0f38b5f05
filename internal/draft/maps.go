package draft

const imageFolder = "https://raw.githubusercontent.com/csgo-league/csgo-league-bot/develop/assets/maps/images/"

// GameMap is a playable map with its display metadata.
type GameMap struct {
	Name     string `json:"name"`
	DevName  string `json:"dev_name"`
	Emoji    string `json:"emoji"`
	ImageURL string `json:"image_url"`
}

// Catalog is every map the service knows about, in draft order.
var Catalog = []GameMap{
	{Name: "Cache", DevName: "de_cache", Emoji: "🏭", ImageURL: imageFolder + "de_cache.jpg"},
	{Name: "Cobblestone", DevName: "de_cbble", Emoji: "🏰", ImageURL: imageFolder + "de_cbble.jpg"},
	{Name: "Dust II", DevName: "de_dust2", Emoji: "🏜️", ImageURL: imageFolder + "de_dust2.jpg"},
	{Name: "Inferno", DevName: "de_inferno", Emoji: "🔥", ImageURL: imageFolder + "de_inferno.jpg"},
	{Name: "Mirage", DevName: "de_mirage", Emoji: "🏜", ImageURL: imageFolder + "de_mirage.jpg"},
	{Name: "Nuke", DevName: "de_nuke", Emoji: "☢️", ImageURL: imageFolder + "de_nuke.jpg"},
	{Name: "Overpass", DevName: "de_overpass", Emoji: "🌉", ImageURL: imageFolder + "de_overpass.jpg"},
	{Name: "Train", DevName: "de_train", Emoji: "🚂", ImageURL: imageFolder + "de_train.jpg"},
	{Name: "Vertigo", DevName: "de_vertigo", Emoji: "🏗️", ImageURL: imageFolder + "de_vertigo.jpg"},
}

// MapByDevName looks a map up in the catalog.
func MapByDevName(devName string) (GameMap, bool) {
	for _, m := range Catalog {
		if m.DevName == devName {
			return m, true
		}
	}
	return GameMap{}, false
}

// MapsByDevName resolves a list of dev names against the catalog, dropping
// unknown entries.
func MapsByDevName(devNames []string) []GameMap {
	maps := make([]GameMap, 0, len(devNames))
	for _, name := range devNames {
		if m, ok := MapByDevName(name); ok {
			maps = append(maps, m)
		}
	}
	return maps
}
