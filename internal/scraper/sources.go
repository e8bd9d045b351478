package scraper

// Source is one external venue listing to sweep. Name is the venue row the
// scraped events are filed under (created on first sweep if missing).
type Source struct {
	ID   string
	Name string
	URL  string
}

// quicktickets listing pages for the city venues.
var DefaultSources = []Source{
	{ID: "filarmoniya", Name: "Филармония", URL: "https://quicktickets.ru/chita-filarmoniya"},
	{ID: "uzory", Name: "Забайкальские узоры", URL: "https://quicktickets.ru/chita-zabajkalskie-uzory"},
	{ID: "rodina", Name: "КЗ Родина", URL: "https://quicktickets.ru/chita-kz-rodina"},
	{ID: "teatr", Name: "Театр Забайкалья", URL: "https://quicktickets.ru/chita-teatr-zabajkale"},
	{ID: "oficerov", Name: "Дом офицеров", URL: "https://quicktickets.ru/chita-dom-oficerov"},
}
