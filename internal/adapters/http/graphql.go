package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VolumeGeometry",
		Fields: graphql.Fields{
			"size":                 &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"annotation_start":     &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"annotation_increment": &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"index_corners":        &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.Int))},
			"annotation_corners":   &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.Int))},
			"world_corners":        &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.Float))},
			"z_start":              &graphql.Field{Type: graphql.Float},
			"z_increment":          &graphql.Field{Type: graphql.Float},
			"z_unit_name":          &graphql.Field{Type: graphql.String},
			"xy_unit_name":         &graphql.Field{Type: graphql.String},
		},
	})

	surveyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Survey",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"sdpath":     &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.String},
			"geometry":   &graphql.Field{Type: geometryType},
		},
	})

	localCoordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocalCoordinate",
		Fields: graphql.Fields{
			"X": &graphql.Field{Type: graphql.Int},
			"Y": &graphql.Field{Type: graphql.Int},
		},
	})

	binGridFields := graphql.Fields{}
	for _, a := range domain.Attributes() {
		var t graphql.Output
		switch a {
		case domain.BinGridLocalCoordinates:
			t = graphql.NewList(localCoordinateType)
		case domain.P6BinGridOriginEasting, domain.P6BinGridOriginNorthing, domain.P6MapGridBearingOfBinGridJaxis:
			t = graphql.Float
		default:
			t = graphql.Int
		}
		binGridFields[a.String()] = &graphql.Field{Type: t}
	}

	binGridType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "BinGrid",
		Fields: binGridFields,
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"surveys": &graphql.Field{
				Type:        graphql.NewList(surveyType),
				Description: "List registered surveys",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					surveys, err := deps.Surveys.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(surveys))
					for i := range surveys {
						out = append(out, surveyValue(&surveys[i]))
					}
					return out, nil
				},
			},
			"survey": &graphql.Field{
				Type:        surveyType,
				Description: "Get a survey by storage path",
				Args: graphql.FieldConfigArgument{
					"sdpath": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sdpath := p.Args["sdpath"].(string)
					s, err := deps.Surveys.GetBySDPath(p.Context, sdpath)
					if err != nil {
						return nil, err
					}
					return surveyValue(s), nil
				},
			},
			"binGrid": &graphql.Field{
				Type:        binGridType,
				Description: "Bin grid of a registered survey",
				Args: graphql.FieldConfigArgument{
					"sdpath": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sdpath := p.Args["sdpath"].(string)
					grid, err := deps.BinGrids.DeriveForSurvey(p.Context, sdpath)
					if err != nil {
						return nil, err
					}
					return binGridValue(grid), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// surveyValue flattens a survey into plain maps and slices for the resolver.
func surveyValue(s *domain.Survey) map[string]interface{} {
	g := s.Geometry
	return map[string]interface{}{
		"id":         s.ID,
		"sdpath":     s.SDPath,
		"name":       s.Name,
		"created_at": s.CreatedAt.Format(time.RFC3339),
		"geometry": map[string]interface{}{
			"size":                 g.Size[:],
			"annotation_start":     g.AnnotationStart[:],
			"annotation_increment": g.AnnotationIncrement[:],
			"index_corners":        intCorners(g.IndexCorners),
			"annotation_corners":   intCorners(g.AnnotationCorners),
			"world_corners":        floatCorners(g.WorldCorners),
			"z_start":              g.ZStart,
			"z_increment":          g.ZIncrement,
			"z_unit_name":          g.ZUnitName,
			"xy_unit_name":         g.XYUnitName,
		},
	}
}

func intCorners(c [4][2]int) [][]int {
	out := make([][]int, len(c))
	for i := range c {
		out[i] = []int{c[i][0], c[i][1]}
	}
	return out
}

func floatCorners(c [4][2]float64) [][]float64 {
	out := make([][]float64, len(c))
	for i := range c {
		out[i] = []float64{c[i][0], c[i][1]}
	}
	return out
}

// binGridValue keys the grid by attribute name. Decimals become plain floats.
func binGridValue(grid domain.BinGrid) map[string]interface{} {
	out := make(map[string]interface{}, len(grid))
	for _, av := range grid {
		switch v := av.Value.(type) {
		case domain.Decimal:
			out[av.Attribute.String()] = float64(v)
		default:
			out[av.Attribute.String()] = v
		}
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
