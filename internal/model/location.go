package model

// Company owns production lines.
type Company struct {
	ID   string `gorm:"primaryKey;size:26" json:"id"`
	Name string `gorm:"size:128;not null;uniqueIndex:idx_companies_name" json:"name"`
	Audit
}

// Country is the root of the location hierarchy.
type Country struct {
	ID   string `gorm:"primaryKey;size:26" json:"id"`
	Name string `gorm:"size:128;not null;uniqueIndex:idx_countries_name" json:"name"`
	Audit
}

// City belongs to a country; names are unique per country.
type City struct {
	ID        string `gorm:"primaryKey;size:26" json:"id"`
	CountryID string `gorm:"size:26;not null;index;uniqueIndex:idx_cities_country_name" json:"country_id"`
	Name      string `gorm:"size:128;not null;uniqueIndex:idx_cities_country_name" json:"name"`
	Audit
}

// TableName matches the descriptor table name.
func (City) TableName() string { return "cities" }

// District belongs to a city; names are unique per city.
type District struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"`
	CityID string `gorm:"size:26;not null;index;uniqueIndex:idx_districts_city_name" json:"city_id"`
	Name   string `gorm:"size:128;not null;uniqueIndex:idx_districts_city_name" json:"name"`
	Audit
}
