package postgres

// schemaScope is the $1 argument of the catalog queries. A nil scope defers
// to the connection's search_path.
func schemaScope(schemas []string) any {
	if len(schemas) == 0 {
		return nil
	}
	return schemas
}
