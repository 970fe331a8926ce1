package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-askdb/pkg/audit"
	"github.com/ekaya-inc/ekaya-askdb/pkg/llm"
	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
	sqlpolicy "github.com/ekaya-inc/ekaya-askdb/pkg/sql"
)

// PipelineState is a state of the per-turn pipeline.
type PipelineState string

const (
	StateIdle          PipelineState = "idle"
	StateMetadataFetch PipelineState = "metadata_fetch"
	StateGeneration    PipelineState = "generation"
	StateExecution     PipelineState = "execution"
	StateExplanation   PipelineState = "explanation"
	StateDone          PipelineState = "done"
	StateReported      PipelineState = "reported"
)

// TurnOutcome is everything one question produced.
type TurnOutcome struct {
	TurnID   uuid.UUID
	Question string
	Schema   string

	// State is StateDone on full success and StateReported after any stage failure.
	State PipelineState
	// Path lists every state the turn entered, starting with StateIdle.
	Path []PipelineState

	Metadata    *models.SchemaMetadata
	Query       *models.GeneratedQuery
	Result      *models.QueryResult
	Explanation string

	// Err is the failure that stopped the turn, nil on full success.
	Err *StageError

	// Reply is the content of the assistant turn appended to the transcript.
	Reply    string
	Duration time.Duration
}

// Partial reports an explanation failure after a successful execution:
// the SQL and the rows are still shown.
func (o *TurnOutcome) Partial() bool {
	return o.Err != nil && o.Err.Stage == StageExplanation && o.Result != nil
}

func (o *TurnOutcome) enter(state PipelineState) {
	o.State = state
	o.Path = append(o.Path, state)
}

// Pipeline sequences metadata extraction, SQL generation, execution, and explanation
// for one question at a time. It keeps no state between turns; everything a turn
// needs comes from the Session.
type Pipeline struct {
	metadata  SchemaMetadataProvider
	generator SQLGenerator
	executor  QueryExecutor
	explainer ResultExplainer
	auditor   *audit.SecurityAuditor
	logger    *zap.Logger
}

// NewPipeline creates a pipeline from its four stages.
func NewPipeline(
	metadata SchemaMetadataProvider,
	generator SQLGenerator,
	executor QueryExecutor,
	explainer ResultExplainer,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		metadata:  metadata,
		generator: generator,
		executor:  executor,
		explainer: explainer,
		auditor:   audit.NewSecurityAuditor(logger),
		logger:    logger.Named("pipeline"),
	}
}

// Ask answers question against the session's selected schema.
//
// Stage failures never escape as errors: they end the turn in StateReported and the
// assistant turn carries a stage-specific message. Exactly one user turn and one
// assistant turn are appended per call. The returned error is for preconditions only
// (empty question, no schema selected), in which case nothing is appended.
func (p *Pipeline) Ask(ctx context.Context, session *Session, question string) (*TurnOutcome, error) {
	if session == nil || session.Connection() == nil {
		return nil, apperrors.ErrNotConnected
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}
	schema := session.SelectedSchema()
	if schema == "" {
		return nil, fmt.Errorf("%w: no schema selected", apperrors.ErrUnknownSchema)
	}

	userTurn := models.NewConversationTurn(models.TurnRoleUser, question)
	session.Transcript().Append(userTurn)

	outcome := &TurnOutcome{
		TurnID:   userTurn.ID,
		Question: question,
		Schema:   schema,
	}
	outcome.enter(StateIdle)

	start := time.Now()
	ctx = llm.WithRequestID(ctx, userTurn.ID)
	p.run(ctx, session, outcome)
	outcome.Duration = time.Since(start)
	p.audit(session, outcome)

	outcome.Reply = renderReply(outcome)
	session.Transcript().Append(models.NewConversationTurn(models.TurnRoleAssistant, outcome.Reply))

	fields := []zap.Field{
		zap.String("turn_id", outcome.TurnID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("schema", schema),
		zap.String("state", string(outcome.State)),
		zap.Duration("elapsed", outcome.Duration),
	}
	if outcome.Err != nil {
		p.logger.Warn("Turn reported a failure",
			append(fields,
				zap.String("stage", string(outcome.Err.Stage)),
				zap.String("kind", string(outcome.Err.Kind)),
				zap.Bool("partial", outcome.Partial()))...)
	} else {
		p.logger.Info("Turn completed", append(fields, zap.Int("rows", outcome.Result.RowCount()))...)
	}

	return outcome, nil
}

// run advances through the stages, stopping at the first failure.
func (p *Pipeline) run(ctx context.Context, session *Session, o *TurnOutcome) {
	conn := session.Connection()

	o.enter(StateMetadataFetch)
	metadata, err := p.metadata.ExtractMetadata(ctx, conn, o.Schema)
	if err != nil {
		p.report(o, StageMetadata, err)
		return
	}
	o.Metadata = metadata

	o.enter(StateGeneration)
	query, err := p.generator.GenerateSQL(ctx, o.Question, metadata, conn.Dialect())
	if err != nil {
		p.report(o, StageGeneration, err)
		return
	}
	o.Query = query

	o.enter(StateExecution)
	result, err := p.executor.Execute(ctx, conn, query)
	if err != nil {
		p.report(o, StageExecution, err)
		return
	}
	o.Result = result

	o.enter(StateExplanation)
	explanation, err := p.explainer.Explain(ctx, o.Question, result)
	if err != nil {
		p.report(o, StageExplanation, err)
		return
	}
	o.Explanation = explanation

	o.enter(StateDone)
}

func (p *Pipeline) report(o *TurnOutcome, stage Stage, err error) {
	se, ok := AsStageError(err)
	if !ok {
		se = newStageError(stage, err)
		if stage == StageGeneration {
			se.Kind = KindTransport
		}
	}
	o.Err = se
	o.enter(StateReported)
}

// audit records executed statements and policy rejections.
func (p *Pipeline) audit(session *Session, o *TurnOutcome) {
	ref := audit.TurnRef{SessionID: session.ID, TurnID: o.TurnID, Schema: o.Schema}

	if o.Result != nil {
		p.auditor.LogQueryExecution(ref, audit.QueryExecutionDetails{
			StatementType: string(o.Query.Type),
			SQL:           o.Query.SQL,
			Rows:          o.Result.RowCount(),
		})
		return
	}

	var policyErr *sqlpolicy.PolicyError
	if o.Err == nil || !errors.As(o.Err, &policyErr) {
		return
	}
	if policyErr.Injection != nil {
		p.auditor.LogInjectionAttempt(ref, audit.SQLInjectionDetails{
			Literal:     policyErr.Injection.Literal,
			Fingerprint: policyErr.Injection.Fingerprint,
			SQL:         policyErr.Statement,
		})
		return
	}
	p.auditor.LogStatementRejected(ref, audit.StatementRejectedDetails{
		StatementType: string(policyErr.Type),
		Reason:        policyErr.Reason,
		SQL:           policyErr.Statement,
	})
}
