package catalog

// DefaultSeedNames is the built-in list registered by SeedDefaultDataset
// when no names are configured.
var DefaultSeedNames = []string{
	"Tom Hanks", "Meryl Streep", "Denzel Washington", "Leonardo DiCaprio", "Cate Blanchett",
	"Morgan Freeman", "Viola Davis", "Robert De Niro", "Al Pacino", "Jack Nicholson",
	"Julia Roberts", "Brad Pitt", "Angelina Jolie", "Johnny Depp", "Nicole Kidman",
	"Harrison Ford", "Sandra Bullock", "Tom Cruise", "Natalie Portman", "Samuel L. Jackson",
	"Scarlett Johansson", "Christian Bale", "Kate Winslet", "Matt Damon", "Emma Stone",
	"Joaquin Phoenix", "Charlize Theron", "Daniel Day-Lewis", "Anthony Hopkins", "Judi Dench",
	"Hugh Jackman", "Anne Hathaway", "Keanu Reeves", "Jennifer Lawrence", "Ryan Gosling",
	"Amy Adams", "George Clooney", "Helen Mirren", "Robert Downey Jr.", "Halle Berry",
	"Will Smith", "Jodie Foster", "Russell Crowe", "Julianne Moore", "Gary Oldman",
	"Frances McDormand", "Kevin Spacey", "Emma Thompson", "Michael Caine", "Octavia Spencer",
	"Jake Gyllenhaal", "Saoirse Ronan", "Mahershala Ali", "Tilda Swinton", "Idris Elba",
	"Marion Cotillard", "Edward Norton", "Penélope Cruz", "Javier Bardem", "Lupita Nyong'o",
	"Tom Hardy", "Margot Robbie", "Chris Hemsworth", "Zendaya", "Timothée Chalamet",
	"Florence Pugh", "Adam Driver", "Rami Malek", "Olivia Colman", "Benedict Cumberbatch",
	"Keira Knightley", "Colin Firth", "Jessica Chastain", "Michael Fassbender", "Rooney Mara",
	"Mark Ruffalo", "Reese Witherspoon", "Ethan Hawke", "Uma Thurman", "Bruce Willis",
	"Sigourney Weaver", "Arnold Schwarzenegger", "Sylvester Stallone", "Clint Eastwood", "Dustin Hoffman",
	"Meg Ryan", "Goldie Hawn", "Diane Keaton", "Sean Penn", "Susan Sarandon",
	"Jeff Bridges", "Glenn Close", "Forest Whitaker", "Jamie Foxx", "Michelle Yeoh",
	"Jackie Chan", "Ken Watanabe", "Song Kang-ho", "Priyanka Chopra", "Cillian Murphy",
}
