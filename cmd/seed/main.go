package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"createform/internal/config"
	"createform/internal/model"
	"createform/internal/repository"
	"createform/internal/service"
)

//go:embed demo.yaml
var demoSurvey []byte

// surveyFile is the YAML shape of a seeded survey
type surveyFile struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Active        bool   `yaml:"active"`
	OutcomePolicy string `yaml:"outcome_policy"`
	LeadCapture   struct {
		Enabled      bool `yaml:"enabled"`
		CollectName  bool `yaml:"collect_name"`
		CollectEmail bool `yaml:"collect_email"`
		RequireEmail bool `yaml:"require_email"`
		Fields       []struct {
			Label    string `yaml:"label"`
			Type     string `yaml:"type"`
			Required bool   `yaml:"required"`
		} `yaml:"fields"`
	} `yaml:"lead_capture"`
	Questions []struct {
		Type    string `yaml:"type"`
		Text    string `yaml:"text"`
		Options []struct {
			Text  string `yaml:"text"`
			Score int    `yaml:"score"`
		} `yaml:"options"`
	} `yaml:"questions"`
	Outcomes []struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		MinScore    *int   `yaml:"min_score"`
		MaxScore    *int   `yaml:"max_score"`
		RedirectURL string `yaml:"redirect_url"`
	} `yaml:"outcomes"`
}

func main() {
	var configFile, surveyPath, owner string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Insert a survey definition for an owner",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), configFile, surveyPath, owner)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the config file")
	cmd.Flags().StringVarP(&surveyPath, "file", "f", "", "survey YAML file (default: built-in demo)")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owner username (default: auth.username)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(parent context.Context, configFile, surveyPath, owner string) error {
	cfg, _, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log, _ := zap.NewDevelopment()
	defer log.Sync()

	if owner == "" {
		owner = cfg.Auth.Username
	}
	if owner == "" {
		return fmt.Errorf("no owner: pass --owner or set auth.username")
	}

	raw := demoSurvey
	if surveyPath != "" {
		if raw, err = os.ReadFile(surveyPath); err != nil {
			return fmt.Errorf("read survey file: %w", err)
		}
	}
	var def surveyFile
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return fmt.Errorf("parse survey file: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	surveyID, err := insert(ctx, db, service.OwnerID(owner), &def)
	if err != nil {
		return err
	}
	log.Info("Seeded survey",
		zap.String("surveyId", surveyID),
		zap.String("owner", owner),
		zap.Int("questions", len(def.Questions)),
		zap.Int("outcomes", len(def.Outcomes)))
	return nil
}

func insert(ctx context.Context, db *mongo.Database, ownerID string, def *surveyFile) (string, error) {
	survey := &model.Survey{
		OwnerID:       ownerID,
		Title:         def.Title,
		Description:   def.Description,
		Active:        def.Active,
		OutcomePolicy: model.OutcomePolicy(def.OutcomePolicy),
		LeadCapture: model.LeadCapture{
			Enabled:      def.LeadCapture.Enabled,
			CollectName:  def.LeadCapture.CollectName,
			CollectEmail: def.LeadCapture.CollectEmail,
			RequireEmail: def.LeadCapture.RequireEmail,
		},
	}
	if !survey.OutcomePolicy.Valid() {
		return "", fmt.Errorf("unknown outcome policy %q", def.OutcomePolicy)
	}
	for _, f := range def.LeadCapture.Fields {
		fieldType := model.LeadFieldType(f.Type)
		if fieldType == "" {
			fieldType = model.LeadFieldText
		}
		survey.LeadCapture.Fields = append(survey.LeadCapture.Fields, model.LeadField{
			Label:    f.Label,
			Type:     fieldType,
			Required: f.Required,
		})
	}

	surveyID, err := repository.NewSurveyRepo(db).Create(ctx, survey)
	if err != nil {
		return "", err
	}

	questionRepo := repository.NewQuestionRepo(db)
	for i, q := range def.Questions {
		question := &model.Question{
			SurveyID: surveyID,
			Order:    i,
			Type:     model.QuestionType(q.Type),
			Text:     q.Text,
		}
		if !question.Type.Valid() {
			return "", fmt.Errorf("question %d: unknown type %q", i+1, q.Type)
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, model.Option{Text: o.Text, Score: o.Score})
		}
		if err := questionRepo.Create(ctx, question); err != nil {
			return "", err
		}
	}

	outcomeRepo := repository.NewOutcomeRepo(db)
	for i, o := range def.Outcomes {
		outcome := &model.Outcome{
			SurveyID:    surveyID,
			Order:       i,
			MinScore:    o.MinScore,
			MaxScore:    o.MaxScore,
			Title:       o.Title,
			Description: o.Description,
			RedirectURL: o.RedirectURL,
		}
		if err := outcomeRepo.Create(ctx, outcome); err != nil {
			return "", err
		}
	}
	return surveyID, nil
}
