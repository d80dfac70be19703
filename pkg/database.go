package spectra

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

var calPoints []CalPoint
var dbRetardation float64
var haveRetardation bool

// LoadDatabase fetches the run dependent analysis inputs: the photoline
// calibration points and, when logged, the retardation voltage.
func LoadDatabase(dbConn *sqlx.DB, runNumber int) error {
	var err error
	calPoints, err = getCalPointsFromDB(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting calibration points from database: %w", err)
		logger.Error(errMessage.Error())
		return err
	}
	dbRetardation, haveRetardation, err = getRetardationFromDB(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting retardation from database: %w", err)
		logger.Error(errMessage.Error())
		return errMessage
	}
	return nil
}

// CalPoints returns the calibration points loaded for the current run.
func CalPoints() []CalPoint {
	return calPoints
}

// DBRetardation returns the logged retardation voltage and whether the
// catalog had an entry for the run.
func DBRetardation() (float64, bool) {
	return dbRetardation, haveRetardation
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type CalPointEntry struct {
	TofNs float64 `db:"tof_ns"`
	EkeEv float64 `db:"eke_ev"`
}

type RetardationEntry struct {
	Retardation float64 `db:"retardation"`
}

func getCalPointsFromDB(db *sqlx.DB, runNumber int) ([]CalPoint, error) {
	query := "SELECT tof_ns, eke_ev FROM CalibPoints WHERE MinRun <= %d and MaxRun >= %d ORDER BY tof_ns"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Reading calibration points from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	points := make([]CalPoint, 0)
	for rows.Next() {
		result := CalPointEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		points = append(points, CalPoint{TofNs: result.TofNs, EkeEv: result.EkeEv})
	}
	return points, nil
}

func getRetardationFromDB(db *sqlx.DB, runNumber int) (float64, bool, error) {
	query := "SELECT retardation FROM RunCatalog WHERE MinRun <= %d and MaxRun >= %d"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Reading retardation voltage from database", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return 0, false, errMessage
	}

	found := false
	value := 0.0
	for rows.Next() {
		result := RetardationEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return 0, false, errMessage
		}
		value = result.Retardation
		found = true
	}
	return value, found, nil
}
