package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservarRequest cuerpo para reservar inventario contra un anticipo o venta.
type ReservarRequest struct {
	PresentacionID string          `json:"presentacion_id"`
	AlmacenID      string          `json:"almacen_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
}

// LiberarRequest cuerpo para liberar parcialmente una reserva.
type LiberarRequest struct {
	Cantidad decimal.Decimal `json:"cantidad"`
}

// AplicarRequest cuerpo para aplicar reserva contra un documento posterior.
type AplicarRequest struct {
	Cantidad    decimal.Decimal `json:"cantidad"`
	DocumentoID string          `json:"documento_id"`
}

// ReservaLoteDTO desglose por lote de una reserva.
type ReservaLoteDTO struct {
	LoteID           string          `json:"lote_id"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	CantidadRestante decimal.Decimal `json:"cantidad_restante"`
}

// ReservaResponse proyección de una reserva con su desglose.
type ReservaResponse struct {
	ID                 string           `json:"id"`
	OrigenTipo         string           `json:"origen_tipo"`
	OrigenID           string           `json:"origen_id"`
	PresentacionID     string           `json:"presentacion_id"`
	AlmacenID          string           `json:"almacen_id"`
	Estado             string           `json:"estado"`
	CantidadSolicitada decimal.Decimal  `json:"cantidad_solicitada"`
	CantidadLiberada   decimal.Decimal  `json:"cantidad_liberada"`
	CantidadAplicada   decimal.Decimal  `json:"cantidad_aplicada"`
	CantidadPendiente  decimal.Decimal  `json:"cantidad_pendiente"`
	ReservadoRestante  decimal.Decimal  `json:"reservado_restante"`
	PermitirSinStock   bool             `json:"permitir_sin_stock"`
	Lotes              []ReservaLoteDTO `json:"lotes"`
	CreatedAt          time.Time        `json:"created_at"`
}

// ResumenLiberacion resultado de liberar (parcial o todo).
type ResumenLiberacion struct {
	ReservaID string          `json:"reserva_id"`
	Liberado  decimal.Decimal `json:"liberado"`
	Restante  decimal.Decimal `json:"restante"`
	Estado    string          `json:"estado"`
}
