package postgres

// scopeExpr is the ordered list of schemas to search: $1 when schemas are
// configured, otherwise the connection's search_path.
const scopeExpr = `COALESCE($1::text[], current_schemas(false)::text[])`

// queryListTables lists each table or view name once, however many schemas in
// scope define it.
const queryListTables = `
	SELECT DISTINCT t.table_name
	FROM information_schema.tables t
	WHERE t.table_schema::text = ANY(` + scopeExpr + `)
		AND t.table_type IN ('BASE TABLE', 'VIEW')
	ORDER BY t.table_name`

// queryListColumns reads $2 from the first schema in scope that defines it,
// which is where an unqualified reference resolves.
const queryListColumns = `
	SELECT c.column_name, c.data_type
	FROM information_schema.columns c
	WHERE c.table_name = $2
		AND c.table_schema = (
			SELECT t.table_schema
			FROM information_schema.tables t
			WHERE t.table_name = $2
				AND t.table_schema::text = ANY(` + scopeExpr + `)
				AND t.table_type IN ('BASE TABLE', 'VIEW')
			ORDER BY array_position(` + scopeExpr + `, t.table_schema::text)
			LIMIT 1)
	ORDER BY c.ordinal_position`
