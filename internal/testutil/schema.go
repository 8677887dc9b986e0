package testutil

import (
	"github.com/roach88/fql/internal/schema"
)

// Schema returns the sample schema used across backend tests:
//
//	User (users) --address--> Address (addresses) --city--> City (cities)
//
// User.address joins users.id = address.tenant_id and Address.city joins
// address.city_id = city.id.
func Schema() *schema.Schema {
	s := schema.New()
	must(s.AddModel(schema.Model{
		Name:    "User",
		Table:   "users",
		Columns: []string{"id", "name", "email", "age", "dob", "role", "active"},
		Associations: map[string]schema.Association{
			"address": {Model: "Address", ParentKey: "id", ChildKey: "tenant_id"},
		},
	}))
	must(s.AddModel(schema.Model{
		Name:    "Address",
		Table:   "addresses",
		Columns: []string{"id", "tenant_id", "country", "street", "city_id"},
		Associations: map[string]schema.Association{
			"city": {Model: "City", ParentKey: "city_id", ChildKey: "id"},
		},
	}))
	must(s.AddModel(schema.Model{
		Name:    "City",
		Table:   "cities",
		Columns: []string{"id", "address_id", "name", "population"},
	}))
	if err := s.Check(); err != nil {
		panic(err)
	}
	return s
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
