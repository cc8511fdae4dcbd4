package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMonto is the largest amount a NUMERIC(14,2) column holds.
const MaxMonto = 999999999999.99

type OperationType string

const (
	OperationIncome  OperationType = "Ingreso"
	OperationExpense OperationType = "Egreso"
)

func (t OperationType) Valid() bool {
	return t == OperationIncome || t == OperationExpense
}

type ObjectiveState string

const (
	ObjectivePending   ObjectiveState = "PENDIENTE"
	ObjectiveCompleted ObjectiveState = "COMPLETADO"
	ObjectiveCancelled ObjectiveState = "CANCELADO"
)

func (s ObjectiveState) Valid() bool {
	switch s {
	case ObjectivePending, ObjectiveCompleted, ObjectiveCancelled:
		return true
	}
	return false
}

type Location struct {
	Provincia string `json:"provincia"`
	Municipio string `json:"municipio"`
	Localidad string `json:"localidad"`
}

type User struct {
	ID          uuid.UUID `json:"id"`
	AuthID      string    `json:"authId"`
	TelegramID  *int64    `json:"telegramId,omitempty"`
	Email       string    `json:"email"`
	Nombre      string    `json:"nombre"`
	Telefono    string    `json:"telefono,omitempty"`
	Sueldo      *float64  `json:"sueldo,omitempty"`
	Profesion   string    `json:"profesion,omitempty"`
	EstadoCivil string    `json:"estadoCivil,omitempty"`
	Ubicacion   Location  `json:"ubicacion"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category with a nil UserID is a default category shared by every user.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Nombre    string     `json:"nombre"`
	Icono     string     `json:"icono"`
	Color     string     `json:"color"`
	UserID    *uuid.UUID `json:"usuarioId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (c Category) IsDefault() bool {
	return c.UserID == nil
}

type Wallet struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"usuarioId"`
	Nombre        string    `json:"nombre"`
	Saldo         float64   `json:"saldo"`
	TotalIngresos float64   `json:"totalIngresos"`
	TotalEgresos  float64   `json:"totalEgresos"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Operation struct {
	ID          uuid.UUID     `json:"id"`
	Monto       float64       `json:"monto"`
	Tipo        OperationType `json:"tipo"`
	Fecha       time.Time     `json:"fecha"`
	Descripcion string        `json:"descripcion"`
	UserID      uuid.UUID     `json:"usuarioId"`
	CategoryID  uuid.UUID     `json:"categoriaId"`
	WalletID    uuid.UUID     `json:"billeteraId"`
	ObjectiveID *uuid.UUID    `json:"objetivoId,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Signed returns the amount as it affects a wallet balance.
func (o Operation) Signed() float64 {
	if o.Tipo == OperationExpense {
		return -o.Monto
	}
	return o.Monto
}

type Objective struct {
	ID            uuid.UUID      `json:"id"`
	Nombre        string         `json:"nombre"`
	MontoObjetivo float64        `json:"montoObjetivo"`
	MontoActual   float64        `json:"montoActual"`
	Estado        ObjectiveState `json:"estado"`
	FechaInicio   time.Time      `json:"fechaInicio"`
	FechaEsperada *time.Time     `json:"fechaEsperada,omitempty"`
	FechaFin      *time.Time     `json:"fechaFin,omitempty"`
	UserID        uuid.UUID      `json:"usuarioId"`
	CategoryID    uuid.UUID      `json:"categoriaId"`
	WalletID      uuid.UUID      `json:"billeteraId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type Profession struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
}

type Province struct {
	ID         uuid.UUID      `json:"id"`
	Nombre     string         `json:"nombre"`
	Municipios []Municipality `json:"municipios"`
}

type Municipality struct {
	ID          uuid.UUID  `json:"id"`
	Nombre      string     `json:"nombre"`
	Localidades []Locality `json:"localidades"`
}

type Locality struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
}
