package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/tools"
)

// Tool names as seen by the model
const (
	ToolListOwners          = "listOwners"
	ToolAddOwnerToPetclinic = "addOwnerToPetclinic"
	ToolListVets            = "listVets"
	ToolAddPetToOwner       = "addPetToOwner"
)

var errInvalidOwnerID = clinic.ValidationErrors{{Field: "ownerId", Message: "must be a positive integer"}}

// Tools is the set of clinic operations the model may invoke
type Tools struct {
	provider *DataProvider
	logger   zerolog.Logger
}

// NewTools creates the tool facade over a data provider
func NewTools(provider *DataProvider, logger zerolog.Logger) *Tools {
	return &Tools{provider: provider, logger: logger.With().Str("component", "petclinic_tools").Logger()}
}

// ListOwners lists the owners that the pet clinic has
func (t *Tools) ListOwners(ctx context.Context) ([]clinic.OwnerDetails, error) {
	t.logger.Info().Msg("listOwners()")
	return t.provider.GetAllOwners(ctx)
}

// AddOwnerToPetclinic validates and creates a new owner
func (t *Tools) AddOwnerToPetclinic(ctx context.Context, req clinic.OwnerRequest) (clinic.OwnerDetails, error) {
	t.logger.Info().Interface("owner_request", req).Msg("addOwnerToPetclinic()")
	if err := req.Validate(); err != nil {
		return clinic.OwnerDetails{}, err
	}
	return t.provider.AddOwnerToPetclinic(ctx, req)
}

// ListVets returns vet descriptions matching the optional filter. A filter
// that cannot be encoded yields an empty list.
func (t *Tools) ListVets(ctx context.Context, filter *clinic.Vet) ([]string, error) {
	t.logger.Info().Interface("vet_request", filter).Msg("listVets()")
	vets, err := t.provider.GetVets(ctx, filter)
	if errors.Is(err, ErrFilterEncoding) {
		t.logger.Error().Err(err).Msg("error processing JSON in the listVets function")
		return []string{}, nil
	}
	return vets, err
}

// AddPetToOwner validates and adds a pet to the owner identified by ownerID
func (t *Tools) AddPetToOwner(ctx context.Context, ownerID int, req clinic.PetRequest) (clinic.PetDetails, error) {
	t.logger.Info().Int("owner_id", ownerID).Interface("pet_request", req).Msg("addPetToOwner()")
	if ownerID <= 0 {
		return clinic.PetDetails{}, errInvalidOwnerID
	}
	if err := req.Validate(); err != nil {
		return clinic.PetDetails{}, err
	}
	return t.provider.AddPetToOwner(ctx, ownerID, req)
}

// Register adds every clinic tool to reg
func (t *Tools) Register(reg tools.Registry) error {
	for _, tool := range t.table() {
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.ToolName, err)
		}
	}
	return nil
}

func (t *Tools) table() []tools.FuncTool {
	return []tools.FuncTool{
		{
			ToolName:        ToolListOwners,
			ToolDescription: "List the owners that the pet clinic has",
			InputSchema:     objectSchema(nil, nil),
			Fn: func(ctx context.Context, _ string) (string, error) {
				owners, err := t.ListOwners(ctx)
				if err != nil {
					return "", err
				}
				return encodeResult(owners)
			},
		},
		{
			ToolName: ToolAddOwnerToPetclinic,
			ToolDescription: "Add a new pet owner to the pet clinic. The Owner must include a first name and a last name " +
				"as two separate words, plus an address and a 10-digit phone number",
			InputSchema: objectSchema(map[string]any{"ownerRequest": ownerRequestSchema}, []string{"ownerRequest"}),
			Fn: func(ctx context.Context, input string) (string, error) {
				var req clinic.OwnerRequest
				if err := decodeArg(input, "ownerRequest", &req); err != nil {
					return "", err
				}
				owner, err := t.AddOwnerToPetclinic(ctx, req)
				if err != nil {
					return "", err
				}
				return encodeResult(owner)
			},
		},
		{
			ToolName:        ToolListVets,
			ToolDescription: "List the veterinarians that the pet clinic has",
			InputSchema:     objectSchema(map[string]any{"vetRequest": vetSchema}, nil),
			Fn: func(ctx context.Context, input string) (string, error) {
				var filter *clinic.Vet
				if arg := gjson.Get(input, "vetRequest"); arg.Exists() && arg.Type != gjson.Null {
					filter = &clinic.Vet{}
					if err := json.Unmarshal([]byte(arg.Raw), filter); err != nil {
						return "", fmt.Errorf("invalid vetRequest: %w", err)
					}
				}
				vets, err := t.ListVets(ctx, filter)
				if err != nil {
					return "", err
				}
				return encodeResult(vets)
			},
		},
		{
			ToolName: ToolAddPetToOwner,
			ToolDescription: "Add a pet with the specified petTypeId, to an owner identified by the ownerId. " +
				"The allowed Pet types IDs are only: 1 = cat, 2 = dog, 3 = lizard, 4 = snake, 5 = bird, 6 - hamster",
			InputSchema: objectSchema(map[string]any{
				"ownerId":    map[string]any{"type": "integer", "description": "Pet's owner identifier"},
				"petRequest": petRequestSchema,
			}, []string{"ownerId", "petRequest"}),
			Fn: func(ctx context.Context, input string) (string, error) {
				owner := gjson.Get(input, "ownerId")
				if owner.Type != gjson.Number || owner.Num != math.Trunc(owner.Num) {
					return "", errInvalidOwnerID
				}
				var req clinic.PetRequest
				if err := decodeArg(input, "petRequest", &req); err != nil {
					return "", err
				}
				pet, err := t.AddPetToOwner(ctx, int(owner.Int()), req)
				if err != nil {
					return "", err
				}
				return encodeResult(pet)
			},
		},
	}
}

// decodeArg unmarshals the named argument, or the whole input when the
// model sent the fields flat
func decodeArg(input, name string, dst any) error {
	if !gjson.Valid(input) {
		return fmt.Errorf("invalid tool input: not a JSON object")
	}
	raw := input
	if arg := gjson.Get(input, name); arg.Exists() {
		raw = arg.Raw
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}

func encodeResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}

func objectSchema(props map[string]any, required []string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var ownerRequestSchema = objectSchema(map[string]any{
	"firstName": map[string]any{"type": "string"},
	"lastName":  map[string]any{"type": "string"},
	"address":   map[string]any{"type": "string"},
	"city":      map[string]any{"type": "string"},
	"telephone": map[string]any{"type": "string", "description": "digits only, at most 12"},
}, []string{"firstName", "lastName", "address", "city", "telephone"})

var petRequestSchema = objectSchema(map[string]any{
	"name":      map[string]any{"type": "string"},
	"birthDate": map[string]any{"type": "string", "format": "date"},
	"typeId":    map[string]any{"type": "integer", "minimum": clinic.PetTypeCat, "maximum": clinic.PetTypeHamster},
}, []string{"name", "typeId"})

var vetSchema = objectSchema(map[string]any{
	"firstName": map[string]any{"type": "string"},
	"lastName":  map[string]any{"type": "string"},
	"specialties": map[string]any{
		"type":  "array",
		"items": objectSchema(map[string]any{"name": map[string]any{"type": "string"}}, nil),
	},
}, nil)
