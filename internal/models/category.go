package models

// Event categories. The values are the Russian labels used by the venue data
// itself (and by the quicktickets listings the scraper reads), so they are
// stored as-is rather than translated.
const (
	CategoryConcert        = "концерт"
	CategoryPlay           = "спектакль"
	CategoryOpera          = "опера"
	CategoryForum          = "форум"
	CategoryAncientMusic   = "концерт старинной музыки"
	CategoryOrganConcert   = "органный концерт"
	CategoryClassicalMusic = "концерт классической музыки"
	CategorySymphonicMusic = "концерт симфонической музыки"
	CategoryFolkMusic      = "концерт народной музыки"
	CategoryMusicTheatre   = "театрально музыкальная постановка"
	CategoryBallet         = "балет"
	CategoryCircus         = "цирк"
	CategoryVirtualConcert = "виртуальный концерт"
	CategoryFairyTale      = "музыкальная сказка для детей"
	CategoryShow           = "шоу программа"
	CategoryDance          = "танцы"
)

var EventCategories = []string{
	CategoryConcert,
	CategoryPlay,
	CategoryOpera,
	CategoryForum,
	CategoryAncientMusic,
	CategoryOrganConcert,
	CategoryClassicalMusic,
	CategorySymphonicMusic,
	CategoryFolkMusic,
	CategoryMusicTheatre,
	CategoryBallet,
	CategoryCircus,
	CategoryVirtualConcert,
	CategoryFairyTale,
	CategoryShow,
	CategoryDance,
}

// News categories, separate enum from event categories.
const (
	NewsGeneral       = "общие"
	NewsMusic         = "музыка"
	NewsCulture       = "культура"
	NewsAnnouncements = "анонсы"
	NewsReports       = "отчеты"
)

var NewsCategories = []string{
	NewsGeneral,
	NewsMusic,
	NewsCulture,
	NewsAnnouncements,
	NewsReports,
}

func IsEventCategory(v string) bool {
	for _, c := range EventCategories {
		if c == v {
			return true
		}
	}
	return false
}

func IsNewsCategory(v string) bool {
	for _, c := range NewsCategories {
		if c == v {
			return true
		}
	}
	return false
}
