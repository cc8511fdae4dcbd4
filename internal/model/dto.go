package model

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated subject behind a request.
type Identity struct {
	Subject string
	Email   string
}

type ProfileInput struct {
	Nombre      string   `json:"nombre"`
	Email       string   `json:"email"`
	Telefono    string   `json:"telefono"`
	Sueldo      *float64 `json:"sueldo"`
	Profesion   string   `json:"profesion"`
	EstadoCivil string   `json:"estadoCivil"`
	Ubicacion   Location `json:"ubicacion"`
}

type CategoryInput struct {
	Nombre string `json:"nombre"`
	Icono  string `json:"icono"`
	Color  string `json:"color"`
}

type WalletInput struct {
	Nombre string   `json:"nombre"`
	Saldo  *float64 `json:"saldo"`
}

type OperationInput struct {
	Monto       float64       `json:"monto"`
	Tipo        OperationType `json:"tipo"`
	Fecha       time.Time     `json:"fecha"`
	Descripcion string        `json:"descripcion"`
	CategoriaID uuid.UUID     `json:"categoriaId"`
	BilleteraID uuid.UUID     `json:"billeteraId"`
	ObjetivoID  *uuid.UUID    `json:"objetivoId"`
}

type OperationFilter struct {
	Tipo  OperationType
	Desde *time.Time
	Hasta *time.Time
}

type ObjectiveInput struct {
	Nombre        string          `json:"nombre"`
	MontoObjetivo float64         `json:"montoObjetivo"`
	FechaInicio   *time.Time      `json:"fechaInicio"`
	FechaEsperada *time.Time      `json:"fechaEsperada"`
	CategoriaID   uuid.UUID       `json:"categoriaId"`
	BilleteraID   uuid.UUID       `json:"billeteraId"`
	Estado        *ObjectiveState `json:"estado"`
}

type ProfessionInput struct {
	Nombre string `json:"nombre"`
}

// LocationPrecision selects how much of a location must match.
type LocationPrecision string

const (
	PrecisionProvince     LocationPrecision = "provincia"
	PrecisionMunicipality LocationPrecision = "municipio"
	PrecisionLocality     LocationPrecision = "localidad"
)

// MatchFields lists the location fields compared at this precision, coarsest first.
func (p LocationPrecision) MatchFields() []string {
	switch p {
	case PrecisionProvince:
		return []string{"provincia"}
	case PrecisionMunicipality:
		return []string{"provincia", "municipio"}
	case PrecisionLocality:
		return []string{"provincia", "municipio", "localidad"}
	}
	return nil
}

func (p LocationPrecision) Valid() bool {
	return p.MatchFields() != nil
}

// SimilarityQuery drives the single repository search behind every similarity criterion.
// Salary orders candidates by proximity; RequireSalary also drops candidates without one.
type SimilarityQuery struct {
	ExcludeUserID uuid.UUID
	Salary        *float64
	RequireSalary bool
	Profession    *string
	Location      *Location
	Precision     LocationPrecision
	Limit         int
}

type SimilarUser struct {
	ID               uuid.UUID `json:"id"`
	Nombre           string    `json:"nombre"`
	Sueldo           *float64  `json:"sueldo,omitempty"`
	Profesion        string    `json:"profesion,omitempty"`
	Ubicacion        Location  `json:"ubicacion"`
	DiferenciaSueldo *float64  `json:"diferenciaSueldo,omitempty"`
	MatchBy          []string  `json:"matchBy"`
}

type CriteriosComparacion struct {
	Sueldo    bool              `json:"sueldo"`
	Profesion bool              `json:"profesion"`
	Ubicacion LocationPrecision `json:"ubicacion,omitempty"`
	Mes       *int              `json:"mes,omitempty"`
	Anio      *int              `json:"anio,omitempty"`
}

type CategoriaTotal struct {
	CategoriaID uuid.UUID `json:"categoriaId"`
	Nombre      string    `json:"nombre"`
	MontoTotal  float64   `json:"montoTotal"`
}

// ComparacionUsuario is one side of a comparison. UsuarioID is nil for an anonymous partner.
type ComparacionUsuario struct {
	UsuarioID        *uuid.UUID       `json:"usuarioId,omitempty"`
	Mes              int              `json:"mes"`
	Anio             int              `json:"anio"`
	Desde            time.Time        `json:"desde"`
	Hasta            time.Time        `json:"hasta"`
	Categorias       []CategoriaTotal `json:"categorias"`
	TotalGastado     float64          `json:"totalGastado"`
	TotalOperaciones int              `json:"totalOperaciones"`
	PrimeraOperacion *time.Time       `json:"primeraOperacion,omitempty"`
	UltimaOperacion  *time.Time       `json:"ultimaOperacion,omitempty"`
}

type Comparacion struct {
	Usuario   ComparacionUsuario `json:"usuario"`
	Comparado ComparacionUsuario `json:"comparado"`
	MatchBy   []string           `json:"matchBy,omitempty"`
}
