package capstone

import (
	"fmt"
	"slices"
)

// Builder accumulates engine options without touching the library until
// Build. Every setter returns a new Builder; the receiver is left as it was.
type Builder struct {
	arch Arch
	mode Mode

	syntax        *OptionValue
	detail        *bool
	skipData      *bool
	skipDataSetup *SkipDataConfig
	mnemonics     []mnemonicOverride
}

type mnemonicOverride struct {
	id       uint
	mnemonic string
}

// NewBuilder starts a configuration for arch and mode.
func NewBuilder(arch Arch, mode Mode) Builder {
	return Builder{arch: arch, mode: mode}
}

// Syntax selects the assembly syntax (OptSyntaxIntel, OptSyntaxATT...).
func (b Builder) Syntax(syntax OptionValue) Builder {
	b.syntax = &syntax
	return b
}

// Detail switches instruction detail on or off.
func (b Builder) Detail(on bool) Builder {
	b.detail = &on
	return b
}

// SkipData switches skip-data mode on or off.
func (b Builder) SkipData(on bool) Builder {
	b.skipData = &on
	return b
}

// SkipDataSetup configures the skip-data mnemonic and callback. Either may be
// zero. Build switches skip-data mode on when a setup is configured, even if
// SkipData(false) was requested.
func (b Builder) SkipDataSetup(mnemonic string, callback SkipDataCallback) Builder {
	b.skipDataSetup = &SkipDataConfig{Mnemonic: mnemonic, Callback: callback}
	return b
}

// Mnemonic overrides the mnemonic printed for instruction id.
func (b Builder) Mnemonic(id uint, mnemonic string) Builder {
	b.mnemonics = append(slices.Clip(b.mnemonics), mnemonicOverride{id: id, mnemonic: mnemonic})
	return b
}

// Build opens an engine and applies the options in a fixed order: syntax,
// detail, skip-data mode, skip-data setup, mnemonic overrides. If any step
// fails the engine is closed and only the error is returned.
func (b Builder) Build() (*Engine, error) {
	e, err := Open(b.arch, b.mode)
	if err != nil {
		return nil, fmt.Errorf("open %v engine: %w", b.arch, err)
	}
	if err := b.apply(e); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Do builds an engine, passes it to fn and closes it when fn returns.
func (b Builder) Do(fn func(*Engine) error) error {
	e, err := b.Build()
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

func (b Builder) apply(e *Engine) error {
	if b.syntax != nil {
		if err := e.SetOption(OptSyntax, *b.syntax); err != nil {
			return fmt.Errorf("set syntax: %w", err)
		}
	}
	if b.detail != nil {
		if err := e.SetOption(OptDetail, onOff(*b.detail)); err != nil {
			return fmt.Errorf("set detail: %w", err)
		}
	}
	skipOn := b.skipData != nil && *b.skipData
	if b.skipData != nil {
		if err := e.SetOption(OptSkipData, onOff(skipOn)); err != nil {
			return fmt.Errorf("set skipdata: %w", err)
		}
	}
	if b.skipDataSetup != nil {
		if !skipOn {
			if err := e.SetOption(OptSkipData, OptOn); err != nil {
				return fmt.Errorf("set skipdata: %w", err)
			}
		}
		if err := e.SetSkipDataSetup(*b.skipDataSetup); err != nil {
			return fmt.Errorf("set skipdata setup: %w", err)
		}
	}
	for _, m := range b.mnemonics {
		if err := e.SetMnemonic(m.id, m.mnemonic); err != nil {
			return fmt.Errorf("set mnemonic %d: %w", m.id, err)
		}
	}
	return nil
}

func onOff(on bool) OptionValue {
	if on {
		return OptOn
	}
	return OptOff
}
