package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

// Seeds a local database with a small property catalog for manual testing:
// one property type, two unit types, a handful of field definitions and
// groups, and a few units. Run with: go run scripts/seed_demo_data.go
func main() {
	dsn := "root:root@tcp(127.0.0.1:3306)/stayhub?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	res, err := db.Exec(`INSERT IGNORE INTO property_types (name, display_name, enabled) VALUES ('apartment_building', 'Apartment Building', 1)`)
	if err != nil {
		log.Fatal("Failed to insert property type:", err)
	}
	propertyTypeID, _ := res.LastInsertId()
	if propertyTypeID == 0 {
		row := db.QueryRow(`SELECT id FROM property_types WHERE name = 'apartment_building'`)
		if err := row.Scan(&propertyTypeID); err != nil {
			log.Fatal("Failed to look up property type:", err)
		}
	}
	fmt.Printf("Property type: apartment_building (id=%d)\n", propertyTypeID)

	unitTypes := []struct {
		Name        string
		DisplayName string
		Occupancy   int
	}{
		{"studio", "Studio", 2},
		{"two_bedroom", "Two Bedroom", 4},
	}

	unitTypeIDs := map[string]int64{}
	for _, ut := range unitTypes {
		res, err := db.Exec(
			`INSERT IGNORE INTO unit_types (property_type_id, name, display_name, max_occupancy, enabled) VALUES (?, ?, ?, ?, 1)`,
			propertyTypeID, ut.Name, ut.DisplayName, ut.Occupancy,
		)
		if err != nil {
			log.Fatal("Failed to insert unit type:", err)
		}
		id, _ := res.LastInsertId()
		if id == 0 {
			row := db.QueryRow(`SELECT id FROM unit_types WHERE property_type_id = ? AND name = ?`, propertyTypeID, ut.Name)
			if err := row.Scan(&id); err != nil {
				log.Fatal("Failed to look up unit type:", err)
			}
		}
		unitTypeIDs[ut.Name] = id
		fmt.Printf("Unit type: %s (id=%d)\n", ut.Name, id)
	}

	studioID := unitTypeIDs["studio"]

	_, err = db.Exec(
		`INSERT IGNORE INTO field_groups (owner_scope, owner_type_id, group_name, display_name, sort_order) VALUES
		('unit_type', ?, 'basics', 'Basics', 0),
		('unit_type', ?, 'amenities', 'Amenities', 1)`,
		studioID, studioID,
	)
	if err != nil {
		log.Fatal("Failed to insert field groups:", err)
	}

	definitions := []struct {
		FieldName   string
		DisplayName string
		TypeKey     string
		Options     string
		Rules       string
		Required    bool
		Category    string
	}{
		{"floor_area", "Floor Area (sqm)", "number", "{}", `{"min": 10, "max": 500}`, true, "general"},
		{"furnished", "Furnished", "boolean", "{}", "{}", false, "general"},
		{"view_type", "View", "select", `{"choices": ["city", "garden", "sea"]}`, "{}", false, "general"},
		{"keywords", "Keywords", "tag", "{}", "{}", false, "marketing"},
		{"base_rate", "Base Nightly Rate", "price", "{}", `{"min": 0}`, true, "pricing"},
	}

	for i, def := range definitions {
		_, err := db.Exec(
			`INSERT IGNORE INTO field_definitions
			(owner_scope, owner_type_id, field_name, display_name, field_type_key, field_options, validation_rules, is_required, is_public, is_for_units, sort_order, category)
			VALUES ('unit_type', ?, ?, ?, ?, ?, ?, ?, 1, 1, ?, ?)`,
			studioID, def.FieldName, def.DisplayName, def.TypeKey, def.Options, def.Rules, def.Required, i, def.Category,
		)
		if err != nil {
			log.Fatal("Failed to insert field definition:", err)
		}
		fmt.Printf("Field definition: %s (%s)\n", def.FieldName, def.TypeKey)
	}

	units := []struct {
		Code string
		Name string
	}{
		{"ST-101", "Studio 101"},
		{"ST-102", "Studio 102"},
		{"ST-201", "Studio 201"},
	}

	for _, u := range units {
		_, err := db.Exec(
			`INSERT IGNORE INTO units (unit_type_id, code, name, status) VALUES (?, ?, ?, 'available')`,
			studioID, u.Code, u.Name,
		)
		if err != nil {
			log.Fatal("Failed to insert unit:", err)
		}
		fmt.Printf("Unit: %s\n", u.Code)
	}

	fmt.Println("\nDone. Seeded demo catalog for unit type 'studio'.")
}
