package inventory

import (
	"context"
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	"github.com/grupodelsur/distribuidora-api/internal/domain"
	"github.com/grupodelsur/distribuidora-api/internal/domain/entity"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
	"github.com/grupodelsur/distribuidora-api/pkg/textutil"
)

// ConsultaInventarioUseCase sirve los listados de solo lectura del libro:
// posiciones por lote y movimientos recientes.
type ConsultaInventarioUseCase struct {
	posRepo repository.PosicionStockRepository
	movRepo repository.MovimientoRepository
}

// NewConsultaInventarioUseCase construye el caso de uso.
func NewConsultaInventarioUseCase(
	posRepo repository.PosicionStockRepository,
	movRepo repository.MovimientoRepository,
) *ConsultaInventarioUseCase {
	return &ConsultaInventarioUseCase{posRepo: posRepo, movRepo: movRepo}
}

// FiltroPosicionesInput filtros del listado de inventario por lote.
type FiltroPosicionesInput struct {
	AlmacenID  string
	Q          string
	VenceAntes *time.Time
	Page       dto.PageRequest
}

// PosicionesPorLote devuelve la página de posiciones ordenada por vencimiento
// y SKU, con el total para paginar.
func (uc *ConsultaInventarioUseCase) PosicionesPorLote(_ context.Context, in FiltroPosicionesInput) (*dto.PosicionesResponse, error) {
	in.Page.DefaultPage()
	filtro := repository.FiltroPosiciones{
		AlmacenID:  in.AlmacenID,
		Q:          textutil.Normalizar(in.Q),
		VenceAntes: in.VenceAntes,
	}
	posiciones, total, err := uc.posRepo.Listar(filtro, in.Page.Limit, in.Page.Offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.PosicionesResponse{
		Posiciones: make([]dto.PosicionLoteDTO, 0, len(posiciones)),
		Page:       dto.PageResponse{Limit: in.Page.Limit, Offset: in.Page.Offset, Total: total},
	}
	for _, p := range posiciones {
		resp.Posiciones = append(resp.Posiciones, posicionToDTO(p))
	}
	return resp, nil
}

// MovimientosRecientes devuelve los últimos movimientos de un lote, el más
// nuevo primero. almacenID vacío = todos.
func (uc *ConsultaInventarioUseCase) MovimientosRecientes(_ context.Context, loteID, almacenID string, limit int) ([]dto.MovimientoDTO, error) {
	if loteID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	movimientos, err := uc.movRepo.Recientes(loteID, almacenID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoDTO, 0, len(movimientos))
	for _, m := range movimientos {
		out = append(out, dto.MovimientoDTO{
			ID:               m.ID,
			LoteID:           m.LoteID,
			AlmacenID:        m.AlmacenID,
			AlmacenDestinoID: m.AlmacenDestinoID,
			Tipo:             m.Tipo,
			Cantidad:         m.Cantidad,
			ModuloOrigen:     m.ModuloOrigen,
			ReferenciaID:     m.ReferenciaID,
			Nota:             m.Nota,
			Fecha:            m.Fecha,
		})
	}
	return out, nil
}

func posicionToDTO(p *entity.PosicionLote) dto.PosicionLoteDTO {
	return dto.PosicionLoteDTO{
		LoteID:           p.LoteID,
		PresentacionID:   p.PresentacionID,
		SKU:              p.SKU,
		Nombre:           p.Nombre,
		AlmacenID:        p.AlmacenID,
		NumeroLote:       p.NumeroLote,
		FechaVencimiento: p.FechaVencimiento,
		Disponible:       p.Disponible,
		Reservada:        p.Reservada,
		StockMinimo:      p.StockMinimo,
	}
}
