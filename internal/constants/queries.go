package constants

// Read-side queries run through sqlx. Placeholders are written as ? and
// rebound for the active driver.
const (
	ListDataPoints = `
	SELECT dp.id, dp.parameter_id, p.name AS parameter_name, p.unit AS unit,
	       dp.timestamp, dp.value
	FROM data_points dp
	JOIN test_parameters p ON p.id = dp.parameter_id
	WHERE dp.flight_test_id = ?
	ORDER BY dp.timestamp ASC, p.name ASC
	LIMIT ? OFFSET ?
	`

	ListDataPointsForParameter = `
	SELECT dp.id, dp.parameter_id, p.name AS parameter_name, p.unit AS unit,
	       dp.timestamp, dp.value
	FROM data_points dp
	JOIN test_parameters p ON p.id = dp.parameter_id
	WHERE dp.flight_test_id = ? AND dp.parameter_id = ?
	ORDER BY dp.timestamp ASC
	LIMIT ? OFFSET ?
	`

	ParameterStatsForFlightTest = `
	SELECT p.id AS parameter_id, p.name AS parameter_name, p.unit AS unit,
	       COUNT(dp.id) AS sample_count,
	       MIN(dp.value) AS min_value, MAX(dp.value) AS max_value, AVG(dp.value) AS avg_value,
	       MIN(dp.timestamp) AS first_timestamp, MAX(dp.timestamp) AS last_timestamp
	FROM data_points dp
	JOIN test_parameters p ON p.id = dp.parameter_id
	WHERE dp.flight_test_id = ?
	GROUP BY p.id, p.name, p.unit
	ORDER BY p.name ASC
	`

	Ping = `SELECT 1`
)
