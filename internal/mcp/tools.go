package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"smartassembly/internal/config"
	"smartassembly/internal/resolver"
	"smartassembly/internal/tables"
)

type GetSmartAssemblyInput struct {
	SmartObjectID string `json:"smart_object_id" jsonschema:"decimal smart object id"`
}

type ListTablesInput struct{}

// SmartAssemblyOutput carries the composed entity. Base and Variant are left
// untyped so the output schema does not constrain big integer fields.
type SmartAssemblyOutput struct {
	SmartObjectID string `json:"smart_object_id"`
	ChainID       uint64 `json:"chain_id"`
	OwnerStatus   string `json:"owner_status"`
	Complete      bool   `json:"complete"`
	AssemblyType  string `json:"assembly_type,omitempty"`
	Base          any    `json:"base,omitempty"`
	Variant       any    `json:"variant,omitempty"`
}

type ColumnOutput struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type TableOutput struct {
	Name    string         `json:"name"`
	SQLName string         `json:"sql_name"`
	Key     string         `json:"key"`
	Columns []ColumnOutput `json:"columns"`
}

type ListTablesOutput struct {
	Tables []TableOutput `json:"tables"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_smart_assembly",
		Description: "Resolve a smart assembly by id, including its owner and type-specific data",
	}, s.handleGetSmartAssembly)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_tables",
		Description: "List the record tables the resolver reads",
	}, s.handleListTables)
}

func (s *Server) handleGetSmartAssembly(ctx context.Context, req *sdk.CallToolRequest, input GetSmartAssemblyInput) (*sdk.CallToolResult, SmartAssemblyOutput, error) {
	if input.SmartObjectID == "" {
		return nil, SmartAssemblyOutput{}, fmt.Errorf("smart_object_id is required")
	}
	id, err := config.ParseSmartObjectID(input.SmartObjectID)
	if err != nil {
		return nil, SmartAssemblyOutput{}, err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := resolver.Await(resolveCtx, s.src, s.owners, s.chainID, id,
		resolver.WithLogger(s.log.WithField("tool", "get_smart_assembly")),
		resolver.WithMetrics(s.metrics),
	)
	if err != nil {
		// A timeout of our own making still answers with the partial result.
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, SmartAssemblyOutput{}, err
		}
	}
	return nil, smartAssemblyOutputFromResult(s.chainID, id.String(), res), nil
}

func (s *Server) handleListTables(ctx context.Context, req *sdk.CallToolRequest, input ListTablesInput) (*sdk.CallToolResult, ListTablesOutput, error) {
	out := ListTablesOutput{Tables: make([]TableOutput, 0, len(tables.All))}
	for _, def := range tables.All {
		columns := make([]ColumnOutput, 0, len(def.Columns()))
		for _, col := range def.Columns() {
			columns = append(columns, ColumnOutput{Name: col.Name, Kind: col.Kind.String()})
		}
		out.Tables = append(out.Tables, TableOutput{
			Name:    def.Name(),
			SQLName: def.SQLName(),
			Key:     def.Columns()[0].Name,
			Columns: columns,
		})
	}
	return nil, out, nil
}

func smartAssemblyOutputFromResult(chainID uint64, id string, res resolver.Result) SmartAssemblyOutput {
	out := SmartAssemblyOutput{
		SmartObjectID: id,
		ChainID:       chainID,
		OwnerStatus:   res.OwnerStatus.String(),
		Complete:      res.Base != nil,
	}
	if res.Base != nil {
		out.Base = *res.Base
	}
	if res.Variant != nil {
		out.AssemblyType = string(res.Variant.Type())
		out.Variant = res.Variant
	}
	return out
}
