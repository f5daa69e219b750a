package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrarMovimientoRequest cuerpo para registrar un movimiento de inventario.
// Cantidad positiva para ingreso/salida/transferencia; con signo para ajuste.
type RegistrarMovimientoRequest struct {
	Tipo             string          `json:"tipo"`
	LoteID           string          `json:"lote_id"`
	AlmacenDestinoID string          `json:"almacen_destino_id,omitempty"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	ReferenciaID     string          `json:"referencia_id,omitempty"`
	Nota             string          `json:"nota,omitempty"`
}

// PosicionLoteDTO fila del listado de inventario por lote.
type PosicionLoteDTO struct {
	LoteID           string          `json:"lote_id"`
	PresentacionID   string          `json:"presentacion_id"`
	SKU              string          `json:"sku"`
	Nombre           string          `json:"nombre"`
	AlmacenID        string          `json:"almacen_id"`
	NumeroLote       string          `json:"numero_lote"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento,omitempty"`
	Disponible       decimal.Decimal `json:"disponible"`
	Reservada        decimal.Decimal `json:"reservada"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
}

// PosicionesResponse página del listado de posiciones.
type PosicionesResponse struct {
	Posiciones []PosicionLoteDTO `json:"posiciones"`
	Page       PageResponse      `json:"page"`
}

// MovimientoDTO fila del listado de movimientos recientes.
type MovimientoDTO struct {
	ID               string          `json:"id"`
	LoteID           string          `json:"lote_id"`
	AlmacenID        string          `json:"almacen_id"`
	AlmacenDestinoID *string         `json:"almacen_destino_id,omitempty"`
	Tipo             string          `json:"tipo"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	ModuloOrigen     string          `json:"modulo_origen"`
	ReferenciaID     string          `json:"referencia_id,omitempty"`
	Nota             string          `json:"nota,omitempty"`
	Fecha            time.Time       `json:"fecha"`
}

// AlertaDTO fila del feed de alertas de inventario.
type AlertaDTO struct {
	LoteID           string          `json:"lote_id"`
	PresentacionID   string          `json:"presentacion_id"`
	SKU              string          `json:"sku"`
	Nombre           string          `json:"nombre"`
	AlmacenID        string          `json:"almacen_id"`
	NumeroLote       string          `json:"numero_lote"`
	Tipo             string          `json:"tipo"`
	Severidad        string          `json:"severidad"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento,omitempty"`
	DiasParaVencer   int             `json:"dias_para_vencer"`
	Disponible       decimal.Decimal `json:"disponible"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
}

// AlertasResponse página del feed de alertas.
type AlertasResponse struct {
	Alertas []AlertaDTO  `json:"alertas"`
	Page    PageResponse `json:"page"`
}

// ResumenAlertasResponse agregados del feed más el top de prioridad.
type ResumenAlertasResponse struct {
	Total        int            `json:"total"`
	PorSeveridad map[string]int `json:"por_severidad"`
	PorTipo      map[string]int `json:"por_tipo"`
	Top          []AlertaDTO    `json:"top"`
}
