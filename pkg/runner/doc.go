/*
Package runner implements the terminal loop that walks a user through a wizard.

It acts as the bridge between the stateless engine and a person at a keyboard.
The runner renders each section, asks its questions through a pluggable handler,
records the answers, and navigates until the terminal section is passed. Contact
capture and document submission follow in Finish.

# Key Components

  - Runner: drives any Wizard implementation section by section.
  - IOHandler: decouples how questions are asked from the loop itself.
  - FormHandler: huh forms, accessible mode when stdin is not a terminal.
  - TextHandler: line-based prompts for pipes, scripts and tests.
  - SanitizeInput: size, UTF-8 and control character checks shared with the engine.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewFormHandler(os.Stdout, nil)),
	)

	state, err := r.Run(ctx, engine, state)
	if err != nil {
		return err
	}
	doc, state, err := r.Finish(ctx, engine, state)
*/
package runner
