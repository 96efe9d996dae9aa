package report

import "context"

// Service composes the general report. The three reads run without a
// transaction: the report is advisory and a small inconsistency window
// under concurrent writes is acceptable.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) General(ctx context.Context) (*GeneralReport, error) {
	pacientes, err := s.repo.CountPacientes(ctx)
	if err != nil {
		return nil, err
	}
	usuarios, err := s.repo.CountUsuarios(ctx)
	if err != nil {
		return nil, err
	}
	estados, err := s.repo.CirugiasPorEstado(ctx)
	if err != nil {
		return nil, err
	}
	return &GeneralReport{
		TotalPacientes:  pacientes,
		TotalUsuarios:   usuarios,
		CirugiasEstados: estados,
	}, nil
}
