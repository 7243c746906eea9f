package medlyn

import (
	"fmt"

	apperrors "github.com/agbru/gsfit/internal/errors"
)

// Roles maps the four logical inputs of the model to column identifiers of
// an observation table.
type Roles struct {
	Obs   string
	VPD   string
	Assim string
	CO2   string
}

// DefaultRoles returns the column names written by LI-COR style exports.
func DefaultRoles() Roles {
	return Roles{Obs: "OBS", VPD: "VPD", Assim: "Photo", CO2: "CO2S"}
}

// Table is a read-only observation table with named numeric columns.
type Table interface {
	// Len returns the number of observations.
	Len() int
	// Column returns the values of the named column, one per observation.
	Column(name string) ([]float64, error)
}

// columns holds the four role columns resolved from a Table.
type columns struct {
	obs, vpd, assim, co2 []float64
}

func (r Roles) resolve(t Table) (columns, error) {
	var c columns
	for _, col := range []struct {
		name string
		dst  *[]float64
	}{
		{r.Obs, &c.obs},
		{r.VPD, &c.vpd},
		{r.Assim, &c.assim},
		{r.CO2, &c.co2},
	} {
		values, err := t.Column(col.name)
		if err != nil {
			return columns{}, err
		}
		if len(values) != t.Len() {
			return columns{}, apperrors.ValidationError{
				Field:   col.name,
				Message: fmt.Sprintf("column has %d values, table has %d rows", len(values), t.Len()),
			}
		}
		*col.dst = values
	}
	return c, nil
}
