package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func base(id, created string) domain.Base {
	t := at(created)
	return domain.Base{ID: id, CreatedAt: t, UpdatedAt: t}
}

func intp(v int) *int { return &v }

// Seed loads the demo dataset. Survey windows are placed around now so the
// active survey accepts responses right after startup.
func Seed(ctx context.Context, s *Store, now time.Time) error {
	day := 24 * time.Hour
	paidAt := at("2024-11-10T14:30:00Z")
	generatedAt := at("2024-11-02T09:00:00Z")

	companies := []domain.Company{
		{
			Base: base("company-1", "2024-01-15T10:00:00Z"), Name: "Tech Solutions Ltda", CNPJ: "12.345.678/0001-90",
			Sector: "Tecnologia", EmployeeCount: 150, IsActive: true,
			BusinessHours: &domain.BusinessHours{Start: "09:00", End: "18:00", Timezone: "America/Sao_Paulo"},
		},
		{
			Base: base("company-2", "2024-02-10T14:30:00Z"), Name: "Consultoria Empresarial S.A.", CNPJ: "98.765.432/0001-10",
			Sector: "Consultoria", EmployeeCount: 80, IsActive: true,
			BusinessHours: &domain.BusinessHours{Start: "08:00", End: "17:00", Timezone: "America/Sao_Paulo"},
		},
	}

	employees := []domain.Employee{
		{Base: base("emp-1", "2024-01-20T10:00:00Z"), Name: "Maria Silva", Email: "maria.silva@techsolutions.com", CompanyID: "company-1", Sector: "Tecnologia", Position: "Desenvolvedora Senior", IsActive: true},
		{Base: base("emp-2", "2024-01-21T14:30:00Z"), Name: "João Santos", Email: "joao.santos@techsolutions.com", CompanyID: "company-1", Sector: "Recursos Humanos", Position: "Analista de RH", IsActive: true},
		{Base: base("emp-3", "2024-01-22T09:15:00Z"), Name: "Ana Oliveira", Email: "ana.oliveira@techsolutions.com", CompanyID: "company-1", Sector: "Tecnologia", Position: "Gerente de Projetos", IsActive: true},
	}

	questions := []domain.Question{
		{
			Base: base("q-1", "2024-01-15T10:00:00Z"), Text: "Como você avalia seu nível de estresse no trabalho?",
			Type: domain.QuestionScale, ScaleMin: intp(1), ScaleMax: intp(10),
			ScaleLabels: &domain.ScaleLabels{Min: "Muito baixo", Max: "Muito alto"}, Category: domain.CategoryStress, IsActive: true,
		},
		{Base: base("q-2", "2024-01-15T10:30:00Z"), Text: "Você se sente satisfeito com seu ambiente de trabalho?", Type: domain.QuestionYesNo, Category: domain.CategorySatisfaction, IsActive: true},
		{
			Base: base("q-3", "2024-01-15T11:00:00Z"), Text: "Qual aspecto do trabalho mais te afeta negativamente?", Type: domain.QuestionMultipleChoice,
			Options:  []string{"Carga de trabalho", "Relacionamento com colegas", "Falta de reconhecimento", "Pressão por resultados", "Outro"},
			Category: domain.CategoryStress, IsActive: true,
		},
		{Base: base("q-4", "2024-01-15T11:30:00Z"), Text: "Descreva como você se sente em relação ao seu trabalho atualmente:", Type: domain.QuestionText, Category: "general", IsActive: true},
		{
			Base: base("q-5", "2024-01-16T09:00:00Z"), Text: "Com que frequência você se sente exausto ao final do dia?", Type: domain.QuestionMultipleChoice,
			Options:  []string{"Nunca", "Raramente", "Às vezes", "Frequentemente", "Sempre"},
			Category: domain.CategoryBurnout, IsActive: true,
		},
	}

	surveys := []domain.Survey{
		{
			Base: base("survey-1", "2024-12-15T00:00:00Z"), Title: "Pesquisa de Clima Organizacional",
			Description: "Avaliação trimestral sobre satisfação e bem-estar dos colaboradores", CompanyID: "company-1",
			Questions: []string{"q-1", "q-2", "q-3", "q-4", "q-5"}, Status: domain.SurveyActive,
			StartDate: now.Add(-7 * day), EndDate: now.Add(23 * day), ReminderFrequency: 7, MinResponses: 10,
		},
		{
			Base: base("survey-2", "2024-12-20T00:00:00Z"), Title: "Avaliação de Estresse e Burnout",
			Description: "Pesquisa focada em identificar sinais de esgotamento profissional", CompanyID: "company-1",
			Questions: []string{"q-1", "q-3", "q-5"}, Status: domain.SurveyDraft,
			StartDate: now.Add(30 * day), EndDate: now.Add(58 * day), ReminderFrequency: 7, MinResponses: 15,
		},
		{
			Base: base("survey-3", "2024-09-15T00:00:00Z"), Title: "Pesquisa de Satisfação Q4 2024",
			Description: "Avaliação sobre satisfação geral com trabalho remoto", CompanyID: "company-2",
			Questions: []string{"q-2", "q-4"}, Status: domain.SurveyClosed,
			StartDate: at("2024-10-01T00:00:00Z"), EndDate: at("2024-10-31T23:59:59Z"), ReminderFrequency: 7, MinResponses: 20,
		},
	}

	cycles := []domain.SurveyCycle{
		{
			Base: base("cycle-1", "2025-01-01T00:00:00Z"), SurveyID: "survey-1", CompanyID: "company-1",
			StartDate: surveys[0].StartDate, EndDate: surveys[0].EndDate, Status: domain.SurveyActive, ResponseCount: 45, TargetCount: 100,
		},
		{
			Base: base("cycle-2", "2024-10-01T00:00:00Z"), SurveyID: "survey-3", CompanyID: "company-2",
			StartDate: surveys[2].StartDate, EndDate: surveys[2].EndDate, Status: domain.SurveyClosed, ResponseCount: 78, TargetCount: 80,
		},
	}

	reports := []domain.Report{
		{
			Base: base("report-1", "2025-01-15T00:00:00Z"), SurveyID: "survey-1", CycleID: "cycle-1", CompanyID: "company-1",
			Title: "Pesquisa de Clima Organizacional", Status: domain.ReportReady, GeneratedAt: &generatedAt,
			Data: domain.ReportData{
				TotalResponses: 45, ResponseRate: 45,
				Sectors: []domain.SectorReport{
					{
						Sector: "TI", ResponseCount: 20,
						AverageScores: map[string]float64{domain.CategoryStress: 6.5, domain.CategorySatisfaction: 7.2, domain.CategoryBurnout: 5.8},
						Alerts:        []domain.Alert{{Type: domain.AlertStress, Level: domain.AlertWarning, Message: "Nível de estresse acima da média"}},
					},
					{
						Sector: "RH", ResponseCount: 15,
						AverageScores: map[string]float64{domain.CategoryStress: 5.2, domain.CategorySatisfaction: 8.1, domain.CategoryBurnout: 4.3},
						Alerts:        []domain.Alert{},
					},
					{
						Sector: "Financeiro", ResponseCount: 10,
						AverageScores: map[string]float64{domain.CategoryStress: 7.8, domain.CategorySatisfaction: 6.5, domain.CategoryBurnout: 7.2},
						Alerts:        []domain.Alert{{Type: domain.AlertBurnout, Level: domain.AlertCritical, Message: "Alto risco de burnout detectado"}},
					},
				},
				Insights: []domain.Insight{
					{Category: domain.CategoryStress, Level: domain.InsightHigh, Message: "Setor Financeiro apresenta níveis críticos de estresse", AffectedSectors: []string{"Financeiro"}},
				},
				Charts: []domain.ChartData{},
			},
		},
		{
			Base: base("report-2", "2024-11-02T00:00:00Z"), SurveyID: "survey-3", CycleID: "cycle-2", CompanyID: "company-2",
			Title: "Pesquisa de Satisfação Q4 2024", Status: domain.ReportReady, GeneratedAt: &generatedAt,
			Data: domain.ReportData{
				TotalResponses: 78, ResponseRate: 97.5,
				Sectors: []domain.SectorReport{
					{Sector: "Consultoria", ResponseCount: 78, AverageScores: map[string]float64{domain.CategorySatisfaction: 7.9}, Alerts: []domain.Alert{}},
				},
				Insights: []domain.Insight{},
				Charts:   []domain.ChartData{},
			},
		},
	}

	payments := []domain.Payment{
		{Base: base("pay-1", "2024-10-15T10:00:00Z"), CompanyID: "company-1", Amount: 2500, Currency: "BRL", Status: domain.PaymentPaid, DueDate: at("2024-11-15T00:00:00Z"), PaidAt: &paidAt, Description: "Mensalidade - Novembro 2024"},
		{Base: base("pay-2", "2024-11-15T10:00:00Z"), CompanyID: "company-1", Amount: 2500, Currency: "BRL", Status: domain.PaymentPending, DueDate: now.Add(15 * day), Description: "Mensalidade - Dezembro 2024"},
		{Base: base("pay-3", "2024-09-15T10:00:00Z"), CompanyID: "company-2", Amount: 1800, Currency: "BRL", Status: domain.PaymentOverdue, DueDate: at("2024-10-15T00:00:00Z"), Description: "Mensalidade - Outubro 2024"},
	}

	videos := []domain.Video{
		{Base: base("vid-1", "2024-01-15T10:00:00Z"), Title: "Introdução à Saúde Mental no Trabalho", Description: "Vídeo introdutório sobre a importância da saúde mental no ambiente corporativo", URL: "https://videos.example.com/saude-mental-intro", Duration: 600, Thumbnail: "https://picsum.photos/seed/video1/400/225", Category: "Introdução", QuizID: "quiz-1", IsActive: true},
		{Base: base("vid-2", "2024-01-16T10:00:00Z"), Title: "Gerenciando o Estresse", Description: "Técnicas práticas para lidar com o estresse no dia a dia", URL: "https://videos.example.com/gerenciando-estresse", Duration: 900, Thumbnail: "https://picsum.photos/seed/video2/400/225", Category: "Bem-estar", QuizID: "quiz-2", IsActive: true},
		{Base: base("vid-3", "2024-01-17T10:00:00Z"), Title: "Prevenção ao Burnout", Description: "Como identificar e prevenir o esgotamento profissional", URL: "https://videos.example.com/prevencao-burnout", Duration: 720, Thumbnail: "https://picsum.photos/seed/video3/400/225", Category: "Prevenção", IsActive: true},
	}

	quizzes := []domain.Quiz{
		{
			Base: base("quiz-1", "2024-01-15T10:00:00Z"), VideoID: "vid-1", PassingScore: 70,
			Questions: []domain.QuizQuestion{
				{ID: "qq-1", Question: "Saúde mental faz parte da saúde geral?", Options: []string{"Sim", "Não"}, CorrectAnswer: 0},
				{ID: "qq-2", Question: "Qual atitude ajuda a prevenir o adoecimento?", Options: []string{"Ignorar sinais", "Pedir ajuda cedo", "Trabalhar mais"}, CorrectAnswer: 1},
			},
		},
		{
			Base: base("quiz-2", "2024-01-16T10:00:00Z"), VideoID: "vid-2", PassingScore: 50,
			Questions: []domain.QuizQuestion{
				{ID: "qq-3", Question: "Pausas curtas reduzem o estresse?", Options: []string{"Sim", "Não"}, CorrectAnswer: 0},
				{ID: "qq-4", Question: "Qual técnica é de respiração?", Options: []string{"4-7-8", "Multitarefa", "Hora extra"}, CorrectAnswer: 0},
			},
		},
	}

	if err := putAll(ctx, s.Companies, companies); err != nil {
		return err
	}
	if err := putAll(ctx, s.Employees, employees); err != nil {
		return err
	}
	if err := putAll(ctx, s.Questions, questions); err != nil {
		return err
	}
	if err := putAll(ctx, s.Surveys, surveys); err != nil {
		return err
	}
	if err := putAll(ctx, s.Cycles, cycles); err != nil {
		return err
	}
	if err := putAll(ctx, s.Reports, reports); err != nil {
		return err
	}
	if err := putAll(ctx, s.Payments, payments); err != nil {
		return err
	}
	if err := putAll(ctx, s.Videos, videos); err != nil {
		return err
	}
	if err := putAll(ctx, s.Quizzes, quizzes); err != nil {
		return err
	}
	for _, c := range companies {
		settings := domain.DefaultSettings(c.ID, c.BusinessHours)
		settings.CreatedAt, settings.UpdatedAt = c.CreatedAt, c.UpdatedAt
		if err := s.Settings.Put(ctx, settings.ID, settings); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}
	}
	return nil
}

func putAll[T any, P interface {
	*T
	domain.Entity
}](ctx context.Context, c domain.Collection[T], items []T) error {
	for i := range items {
		id := P(&items[i]).Meta().ID
		if err := c.Put(ctx, id, items[i]); err != nil {
			return fmt.Errorf("failed to seed %s: %w", id, err)
		}
	}
	return nil
}
