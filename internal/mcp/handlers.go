package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gamesoul/gamesoul/internal/engine"
	"github.com/gamesoul/gamesoul/internal/feedback"
	"github.com/gamesoul/gamesoul/internal/ratelimit"
	"github.com/gamesoul/gamesoul/internal/recommend"
)

// Tool names.
const (
	ToolQuestionnaire = "gamesoul_questionnaire"
	ToolQuestions     = "gamesoul_questions"
	ToolRecommend     = "gamesoul_recommend"
	ToolFeedback      = "gamesoul_feedback"
	ToolEmotions      = "gamesoul_emotions"
	ToolProfile       = "gamesoul_profile"
)

// registerTools registers all gamesoul MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolQuestionnaire,
		Description: "Submit questionnaire answers for a player; returns their emotional profile and matching games",
	}, s.handleQuestionnaire)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolQuestions,
		Description: "List the questionnaire questions, the answer ids each accepts and the characteristics usable as dealbreakers",
	}, s.handleQuestions)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolRecommend,
		Description: "Recommend games for a player (emotional, social, mixed) or for an emotion",
	}, s.handleRecommend)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolFeedback,
		Description: "Record whether a player liked a game they played",
	}, s.handleFeedback)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolEmotions,
		Description: "List the emotion vocabulary used by profiles and recommendations",
	}, s.handleEmotions)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolProfile,
		Description: "Read back a player's stored profile, emotional state and resonances",
	}, s.handleProfile)
}

// registerResources registers read-only reference data.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "gamesoul://questionnaire",
		Name:        "gamesoul-questionnaire",
		Description: "The player questionnaire with accepted answer ids and dealbreaker characteristics.",
		MIMEType:    "application/json",
	}, s.handleQuestionnaireResource)
}

func (s *Server) handleQuestionnaireResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	catalog, err := s.engine.Questionnaire(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding questionnaire: %w", err)
	}
	uri := "gamesoul://questionnaire"
	if req != nil && req.Params != nil {
		uri = req.Params.URI
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleQuestionnaire implements the gamesoul_questionnaire tool.
func (s *Server) handleQuestionnaire(ctx context.Context, req *sdk.CallToolRequest, args QuestionnaireInput) (_ *sdk.CallToolResult, _ QuestionnaireOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolQuestionnaire, start, retErr, sanitizeToolParams(map[string]interface{}{
			"user_id": args.UserID, "answers": len(args.Answers), "dealbreakers": len(args.Dealbreakers),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolQuestionnaire); err != nil {
		return nil, QuestionnaireOutput{}, err
	}

	res, err := s.engine.SubmitQuestionnaire(ctx, args.UserID, args.Answers, args.Dealbreakers)
	if err != nil {
		return nil, QuestionnaireOutput{}, fmt.Errorf("submitting questionnaire: %w", err)
	}

	return nil, QuestionnaireOutput{
		Profile:         res.Profile,
		Recommendations: res.Recommendations,
	}, nil
}

// handleQuestions implements the gamesoul_questions tool.
func (s *Server) handleQuestions(ctx context.Context, req *sdk.CallToolRequest, args QuestionsInput) (_ *sdk.CallToolResult, _ QuestionsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolQuestions, start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolQuestions); err != nil {
		return nil, QuestionsOutput{}, err
	}

	catalog, err := s.engine.Questionnaire(ctx)
	if err != nil {
		return nil, QuestionsOutput{}, err
	}
	return nil, QuestionsOutput{Questions: catalog.Questions, Characteristics: catalog.Characteristics}, nil
}

// handleProfile implements the gamesoul_profile tool.
func (s *Server) handleProfile(ctx context.Context, req *sdk.CallToolRequest, args ProfileInput) (_ *sdk.CallToolResult, _ ProfileOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolProfile, start, retErr, sanitizeToolParams(map[string]interface{}{
			"user_id": args.UserID,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolProfile); err != nil {
		return nil, ProfileOutput{}, err
	}

	p, err := s.engine.Profile(ctx, args.UserID)
	if err != nil {
		return nil, ProfileOutput{}, fmt.Errorf("reading profile: %w", err)
	}
	return nil, ProfileOutput{
		User:           p.User,
		EmotionalState: p.EmotionalState,
		Resonances:     p.Resonances,
	}, nil
}

// handleRecommend implements the gamesoul_recommend tool.
// Lookup failures produce an empty list rather than a tool error.
func (s *Server) handleRecommend(ctx context.Context, req *sdk.CallToolRequest, args RecommendInput) (_ *sdk.CallToolResult, _ RecommendOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolRecommend, start, retErr, sanitizeToolParams(map[string]interface{}{
			"mode": args.Mode, "user_id": args.UserID, "emotion": args.Emotion, "dealbreakers": len(args.Dealbreakers),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolRecommend); err != nil {
		return nil, RecommendOutput{}, err
	}

	request := engine.Request{
		Mode:         recommend.Strategy(args.Mode),
		UserID:       args.UserID,
		Emotion:      args.Emotion,
		Dealbreakers: args.Dealbreakers,
	}
	request, err := request.Validate()
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	recs, err := s.engine.Recommend(ctx, request)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	return nil, RecommendOutput{
		Mode:            string(request.Mode),
		Recommendations: recs,
		Count:           len(recs),
	}, nil
}

// handleFeedback implements the gamesoul_feedback tool.
func (s *Server) handleFeedback(ctx context.Context, req *sdk.CallToolRequest, args FeedbackInput) (_ *sdk.CallToolResult, _ FeedbackOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]interface{}{
			"user_id": args.UserID, "item_id": args.ItemID, "liked": args.Liked,
		}
		if args.Rating != nil {
			params["rating"] = *args.Rating
		}
		s.auditTool(ToolFeedback, start, retErr, sanitizeToolParams(params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolFeedback); err != nil {
		return nil, FeedbackOutput{}, err
	}

	res, err := s.engine.SubmitFeedback(ctx, feedback.Submission{
		UserID: args.UserID,
		ItemID: args.ItemID,
		Liked:  args.Liked,
		Rating: args.Rating,
	})
	if err != nil {
		return nil, FeedbackOutput{}, fmt.Errorf("recording feedback: %w", err)
	}

	out := FeedbackOutput{
		ItemCreated:  res.ItemCreated,
		NaturalEdges: res.Similarity.Natural,
		SeedEdges:    res.Similarity.Seeded,
	}
	verb := "disliked"
	if args.Liked {
		verb = "liked"
	}
	out.Message = fmt.Sprintf("Recorded that %s %s %s", res.UserID, verb, res.ItemID)
	if res.StateAssigned != nil {
		out.StateAssigned = string(*res.StateAssigned)
		out.Message += fmt.Sprintf("; emotional state set to %s", out.StateAssigned)
	}

	return nil, out, nil
}

// handleEmotions implements the gamesoul_emotions tool.
func (s *Server) handleEmotions(ctx context.Context, req *sdk.CallToolRequest, args EmotionsInput) (_ *sdk.CallToolResult, _ EmotionsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolEmotions, start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolEmotions); err != nil {
		return nil, EmotionsOutput{}, err
	}

	return nil, EmotionsOutput{Emotions: s.engine.Emotions()}, nil
}
