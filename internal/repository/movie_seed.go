package repository

import (
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedMovies is the storefront's launch catalog.
func seedMovies() []model.Movie {
	return []model.Movie{
		{
			ID: 1, Title: "Avatar: The Way of Water", Genres: []string{"Sci-Fi", "Adventure"},
			Rating: 8.2, Duration: "3h 12m", Language: "English", ReleaseDate: day("2022-12-16"),
			Description: "Set more than a decade after the events of the first film, Avatar: The Way of Water begins to tell the story of the Sully family.",
			Director:    "James Cameron",
			Cast:        []string{"Sam Worthington", "Zoe Saldana", "Sigourney Weaver", "Stephen Lang", "Kate Winslet"},
			Poster:      "/placeholder.svg?height=400&width=300&text=Avatar",
			Status:      model.MovieActive, TotalBookings: 1234, Revenue: 456789,
		},
		{
			ID: 2, Title: "Black Panther: Wakanda Forever", Genres: []string{"Action", "Adventure"},
			Rating: 7.8, Duration: "2h 41m", Language: "English", ReleaseDate: day("2022-11-11"),
			Description: "Queen Ramonda, Shuri, M'Baku, Okoye and the Dora Milaje fight to protect their nation from intervening world powers.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Black+Panther",
			Status:      model.MovieActive, TotalBookings: 987, Revenue: 345678,
		},
		{
			ID: 3, Title: "Top Gun: Maverick", Genres: []string{"Action", "Drama"},
			Rating: 8.7, Duration: "2h 10m", Language: "English", ReleaseDate: day("2022-05-27"),
			Description: "After thirty years, Maverick is still pushing the envelope as a top naval aviator.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Top+Gun",
			Status:      model.MovieActive, TotalBookings: 876, Revenue: 298765,
		},
		{
			ID: 4, Title: "The Batman", Genres: []string{"Action", "Crime"},
			Rating: 8.1, Duration: "2h 56m", Language: "English", ReleaseDate: day("2022-03-04"),
			Description: "When a sadistic serial killer begins murdering key political figures in Gotham, Batman is forced to investigate the city's hidden corruption.",
			Poster:      "/placeholder.svg?height=400&width=300&text=The+Batman",
			Status:      model.MovieActive,
		},
		{
			ID: 5, Title: "Doctor Strange 2", Genres: []string{"Action", "Adventure"},
			Rating: 7.4, Duration: "2h 6m", Language: "English", ReleaseDate: day("2022-05-06"),
			Description: "Doctor Strange teams up with a mysterious young girl who can travel across multiverses.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Doctor+Strange",
			Status:      model.MovieActive,
		},
		{
			ID: 6, Title: "Jurassic World Dominion", Genres: []string{"Action", "Adventure"},
			Rating: 6.8, Duration: "2h 27m", Language: "English", ReleaseDate: day("2022-06-10"),
			Description: "Four years after the destruction of Isla Nublar, dinosaurs now live and hunt alongside humans all over the world.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Jurassic+World",
			Status:      model.MovieActive,
		},
		{
			ID: 7, Title: "Minions: The Rise of Gru", Genres: []string{"Animation", "Comedy"},
			Rating: 6.5, Duration: "1h 27m", Language: "English", ReleaseDate: day("2022-07-01"),
			Description: "The untold story of one twelve-year-old's dream to become the world's greatest supervillain.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Minions",
			Status:      model.MovieActive,
		},
		{
			ID: 8, Title: "Spider-Man: Across the Spider-Verse", Genres: []string{"Animation", "Action"},
			Rating: 9.2, Duration: "2h 20m", Language: "English", ReleaseDate: day("2023-06-02"),
			Description: "Miles Morales catapults across the Multiverse, where he encounters a team of Spider-People.",
			Poster:      "/placeholder.svg?height=400&width=300&text=Spider-Man",
			Status:      model.MovieComingSoon,
		},
	}
}

// showSlot is one daily screening slot offered for every active movie.
type showSlot struct {
	hour, minute int
	venue        string
	location     string
	price        int
	available    int
}

var showSlots = []showSlot{
	{10, 0, "PVR Cinemas", "Phoenix Mall", 250, 45},
	{13, 30, "PVR Cinemas", "Phoenix Mall", 300, 32},
	{17, 0, "INOX", "Forum Mall", 280, 28},
	{20, 30, "INOX", "Forum Mall", 350, 15},
	{23, 0, "Cinepolis", "Central Mall", 200, 52},
}
