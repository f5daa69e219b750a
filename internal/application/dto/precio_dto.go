package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CambioManualRequest cuerpo para un cambio manual de precio.
// EfectivaEn nil = ahora.
type CambioManualRequest struct {
	Precio     decimal.Decimal `json:"precio"`
	Motivo     string          `json:"motivo"`
	EfectivaEn *time.Time      `json:"efectiva_en,omitempty"`
}

// HistorialPrecioDTO fila del historial de precios.
type HistorialPrecioDTO struct {
	ID             string          `json:"id"`
	PresentacionID string          `json:"presentacion_id"`
	Precio         decimal.Decimal `json:"precio"`
	VigenteDesde   time.Time       `json:"vigente_desde"`
	VigenteHasta   *time.Time      `json:"vigente_hasta,omitempty"`
	Motivo         string          `json:"motivo"`
	Usuario        string          `json:"usuario,omitempty"`
}

// HistorialPreciosResponse página del buscador de historial.
type HistorialPreciosResponse struct {
	Historial []HistorialPrecioDTO `json:"historial"`
	Page      PageResponse         `json:"page"`
}

// DeltaPrecioDTO diferencia por presentación en un recálculo masivo.
type DeltaPrecioDTO struct {
	PresentacionID string          `json:"presentacion_id"`
	SKU            string          `json:"sku"`
	PrecioAnterior decimal.Decimal `json:"precio_anterior"`
	PrecioNuevo    decimal.Decimal `json:"precio_nuevo"`
}

// RecalculoResponse resumen de un recálculo masivo (simulado o confirmado).
type RecalculoResponse struct {
	Simulado  bool             `json:"simulado"`
	Cambiados int              `json:"cambiados"`
	SinCambio int              `json:"sin_cambio"`
	Omitidos  int              `json:"omitidos"`
	TasaUsada decimal.Decimal  `json:"tasa_usada"`
	Detalle   []DeltaPrecioDTO `json:"detalle"`
}
