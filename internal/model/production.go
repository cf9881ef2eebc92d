package model

// LineType classifies production lines.
type LineType struct {
	ID   string `gorm:"primaryKey;size:26" json:"id"`
	Name string `gorm:"size:128;not null;uniqueIndex:idx_line_types_name" json:"name"`
	Audit
}

// Line is a production line of a company, located in a district.
type Line struct {
	ID         string `gorm:"primaryKey;size:26" json:"id"`
	CompanyID  string `gorm:"size:26;not null;index;uniqueIndex:idx_lines_company_name" json:"company_id"`
	DistrictID string `gorm:"size:26;not null;index" json:"district_id"`
	LineTypeID string `gorm:"size:26;not null;index" json:"line_type_id"`
	Name       string `gorm:"size:128;not null;uniqueIndex:idx_lines_company_name" json:"name"`
	Audit
}

// Machine is a metered machine on a line. Order is its four digit position,
// unique within the line.
type Machine struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"`
	LineID string `gorm:"size:26;not null;index;uniqueIndex:idx_machines_line_name;uniqueIndex:idx_machines_line_order" json:"line_id"`
	Name   string `gorm:"size:128;not null;uniqueIndex:idx_machines_line_name" json:"name"`
	Order  int    `gorm:"column:order;not null;check:chk_machines_order,\"order\" BETWEEN 1000 AND 9999;uniqueIndex:idx_machines_line_order" json:"order"`
	Audit
}

// KPI is a measured indicator and its unit.
type KPI struct {
	ID   string `gorm:"primaryKey;size:26" json:"id"`
	Name string `gorm:"size:128;not null;uniqueIndex:idx_kpis_name" json:"name"`
	Unit string `gorm:"size:32;not null" json:"unit"`
	Audit
}

// TableName keeps the acronym lowercase.
func (KPI) TableName() string { return "kpis" }
