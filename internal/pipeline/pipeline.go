// Package pipeline orchestrates the catalog build and code generation
// workflows.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/psptransmog/internal/cli"
	"github.com/retroenv/psptransmog/internal/codegen"
	"github.com/retroenv/psptransmog/internal/cwcheat"
	"github.com/retroenv/psptransmog/internal/equip"
	"github.com/retroenv/psptransmog/internal/extract"
	"github.com/retroenv/psptransmog/internal/layout"
	"github.com/retroenv/psptransmog/internal/names"
	"github.com/retroenv/psptransmog/internal/options"
	"github.com/retroenv/psptransmog/internal/savestate"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the transmog workflows.
type Pipeline struct {
	logger *log.Logger
	loader *savestate.Loader
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: savestate.New(),
	}
}

// BuildCatalog extracts the equipment tables from the input image, groups
// them into sets and writes the catalog document.
func (p *Pipeline) BuildCatalog(ctx context.Context, opts options.Program) error {
	l, err := p.loadLayout(opts)
	if err != nil {
		return err
	}

	source, err := p.loadNames(opts)
	if err != nil {
		return err
	}

	img, err := p.loader.Load(opts.Input, cli.RawBaseAddress(opts))
	if err != nil {
		return fmt.Errorf("loading memory image: %w", err)
	}
	p.logger.Info("Loaded memory image",
		log.String("file", opts.Input),
		log.Int("bytes", img.Size()))

	extractor := extract.New(p.logger, img, l)
	result, err := extractor.Run(ctx)
	if err != nil {
		return err
	}
	for table, tableErr := range result.Failed {
		p.logger.Warn("Table missing from catalog",
			log.String("table", table), log.Err(tableErr))
	}

	catalog := equip.Build(p.logger, result, l, source)
	if err := catalog.SaveFile(opts.Catalog); err != nil {
		return err
	}

	p.logger.Info("Catalog written",
		log.String("file", opts.Catalog),
		log.Int("weapon_models", len(catalog.Weapons)),
		log.Int("armor_tables", len(catalog.Armor)))
	return nil
}

// Generate compiles the requested substitutions against the catalog and
// returns the encoded cheat blocks.
func (p *Pipeline) Generate(opts options.Program) ([]cwcheat.Block, error) {
	l, err := p.loadLayout(opts)
	if err != nil {
		return nil, err
	}

	catalog, err := equip.LoadFile(opts.Catalog)
	if err != nil {
		return nil, err
	}

	generator := codegen.New(catalog)
	encoder := cwcheat.NewEncoder(l.ExternalBase)
	gen := opts.Generate

	var blocks []cwcheat.Block

	if gen.WeaponSource != "" {
		block, err := p.weaponBlock(catalog, generator, encoder, gen)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if gen.Slot != "" {
		block, err := p.armorBlock(catalog, generator, encoder, gen)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

func (p *Pipeline) weaponBlock(catalog *equip.Catalog, generator *codegen.Generator,
	encoder cwcheat.Encoder, gen options.Generate) (cwcheat.Block, error) {

	source, err := catalog.FindWeapon(gen.WeaponSource)
	if err != nil {
		return cwcheat.Block{}, err
	}
	target, err := catalog.FindWeapon(gen.WeaponTarget)
	if err != nil {
		return cwcheat.Block{}, err
	}

	instructions, err := generator.WeaponCodes(source, target)
	if err != nil {
		return cwcheat.Block{}, err
	}

	title := gen.Title
	if title == "" {
		title = fmt.Sprintf("Weapon Transmog: %s -> %s",
			source.DisplayName(), target.DisplayName())
	}
	p.logger.Info("Generated weapon codes",
		log.String("source", source.DisplayName()),
		log.String("target", target.DisplayName()),
		log.Int("lines", len(instructions)))
	return encoder.EncodeBlock(title, instructions)
}

func (p *Pipeline) armorBlock(catalog *equip.Catalog, generator *codegen.Generator,
	encoder cwcheat.Encoder, gen options.Generate) (cwcheat.Block, error) {

	slot := layout.Slot(gen.Slot)

	if gen.AllInvisible {
		instructions, err := generator.InvisibleSlot(slot)
		if err != nil {
			return cwcheat.Block{}, err
		}
		title := gen.Title
		if title == "" {
			title = fmt.Sprintf("Universal Invisible %s", slot.Label())
		}
		p.logger.Info("Generated universal invisibility codes",
			log.String("slot", string(slot)), log.Int("lines", len(instructions)))
		return encoder.EncodeBlock(title, instructions)
	}

	source, err := catalog.FindArmor(slot, gen.Source, false)
	if err != nil {
		return cwcheat.Block{}, err
	}

	policy := codegen.DefaultPolicy()
	policy.ForcedVariant = gen.Variant
	policy.SwapGender = gen.SwapGender

	var target *equip.ArmorSet
	targetName := "Invisible"
	if gen.Invisible {
		policy.Invisible = true
	} else {
		found, err := catalog.FindArmor(slot, gen.Target, true)
		if err != nil {
			return cwcheat.Block{}, err
		}
		target = &found
		targetName = found.DisplayName()
	}

	instructions, err := generator.ArmorCodes(slot, source, target, policy)
	if err != nil {
		return cwcheat.Block{}, err
	}

	title := gen.Title
	if title == "" {
		title = armorTitle(slot, source.DisplayName(), targetName, gen.Invisible)
	}
	p.logger.Info("Generated armor codes",
		log.String("slot", string(slot)),
		log.String("source", source.DisplayName()),
		log.String("target", targetName),
		log.Int("lines", len(instructions)))
	return encoder.EncodeBlock(title, instructions)
}

func armorTitle(slot layout.Slot, source, target string, invisible bool) string {
	title := fmt.Sprintf("Armor Transmog: %s -> %s", source, target)
	if invisible {
		title += fmt.Sprintf(" (invisible %s)", string(slot))
	}
	return title
}

func (p *Pipeline) loadLayout(opts options.Program) (layout.Layout, error) {
	if opts.Layout == "" {
		return layout.Default()
	}
	return layout.LoadFile(opts.Layout)
}

func (p *Pipeline) loadNames(opts options.Program) (names.Source, error) {
	if opts.Names == "" {
		p.logger.Info("No names file given, labeling equipment by model id")
		return names.Placeholder{}, nil
	}
	return names.LoadFile(opts.Names)
}
