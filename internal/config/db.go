package config

// DB holds the database connection settings. GormEngine selects the
// driver (mysql, postgres or sqlite); with sqlite only Name is used, as
// the database file path.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
