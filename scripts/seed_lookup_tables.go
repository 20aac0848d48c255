package main

import (
	"fmt"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
)

func main() {
	db := storage.InitializeDB()
	storage.SeedLookupTables(db)
	fmt.Println("lookup tables seeded")
}
