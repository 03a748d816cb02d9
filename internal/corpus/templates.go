package corpus

import (
	"strconv"
	"strings"
)

// Template renders one synthetic source file for a given index. Every
// top-level identifier is suffixed with the index so files never collide.
type Template struct {
	Name   string
	Render func(index int) string
}

const indexMarker = "__N__"

func fromText(name, text string) Template {
	return Template{
		Name: name,
		Render: func(index int) string {
			return strings.ReplaceAll(text, indexMarker, strconv.Itoa(index))
		},
	}
}

// DefaultTemplates returns the TSX templates in their fixed order.
func DefaultTemplates() []Template {
	return []Template{
		fromText("component", componentTSX),
		fromText("service", serviceTSX),
		fromText("utility", utilityTSX),
		fromText("store", storeTSX),
	}
}

const componentTSX = `import React, { useEffect, useState } from 'react';

interface Author__N__ {
  id: number;
  displayName: string;
  email: string;
  articles: Article__N__[];
}

interface Article__N__ {
  id: number;
  headline: string;
  body: string;
  author: Author__N__;
  labels: string[];
}

type ProfileProps__N__ = {
  author: Author__N__;
  onSelect?: (article: Article__N__) => void;
};

const AuthorProfile__N__: React.FC<ProfileProps__N__> = ({ author, onSelect }) => {
  const [loading, setLoading] = useState<boolean>(false);
  const [articles, setArticles] = useState<Article__N__[]>([]);
  const [failure, setFailure] = useState<string | null>(null);

  useEffect(() => {
    let cancelled = false;
    const load = async () => {
      setLoading(true);
      try {
        const response = await fetch('/api/authors/' + author.id + '/articles');
        const data: Article__N__[] = await response.json();
        if (!cancelled) {
          setArticles(data);
        }
      } catch (err) {
        if (!cancelled) {
          setFailure(String(err));
        }
      } finally {
        if (!cancelled) {
          setLoading(false);
        }
      }
    };
    load();
    return () => {
      cancelled = true;
    };
  }, [author.id]);

  const select = (article: Article__N__) => {
    if (onSelect) {
      onSelect(article);
    }
  };

  if (failure !== null) {
    return <div className="profile-error">{failure}</div>;
  }

  return (
    <section className="author-profile">
      <h2>{author.displayName}</h2>
      <a href={'mailto:' + author.email}>{author.email}</a>
      {loading ? (
        <p>Loading articles...</p>
      ) : (
        <ul>
          {articles.map((article) => (
            <li key={article.id} onClick={() => select(article)}>
              <h3>{article.headline}</h3>
              <p>{article.body}</p>
              <div className="labels">
                {article.labels.map((label) => (
                  <span key={label} className="label">{label}</span>
                ))}
              </div>
            </li>
          ))}
        </ul>
      )}
    </section>
  );
};

export default AuthorProfile__N__;
`

const serviceTSX = `export interface Identified__N__ {
  id: string;
}

export class RepositoryError__N__ extends Error {
  constructor(public readonly status: number, message: string) {
    super(message);
    this.name = 'RepositoryError__N__';
  }
}

export class Repository__N__<T extends Identified__N__> {
  private readonly cache = new Map<string, T>();

  constructor(private readonly baseUrl: string) {}

  async find(id: string): Promise<T | undefined> {
    const cached = this.cache.get(id);
    if (cached !== undefined) {
      return cached;
    }
    const response = await fetch(this.baseUrl + '/' + encodeURIComponent(id));
    if (response.status === 404) {
      return undefined;
    }
    if (!response.ok) {
      throw new RepositoryError__N__(response.status, 'lookup failed for ' + id);
    }
    const item = (await response.json()) as T;
    this.cache.set(item.id, item);
    return item;
  }

  async list(): Promise<T[]> {
    const response = await fetch(this.baseUrl);
    if (!response.ok) {
      throw new RepositoryError__N__(response.status, 'list failed');
    }
    const items = (await response.json()) as T[];
    for (const item of items) {
      this.cache.set(item.id, item);
    }
    return items;
  }

  async save(draft: Omit<T, 'id'>): Promise<T> {
    const response = await fetch(this.baseUrl, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(draft),
    });
    if (!response.ok) {
      throw new RepositoryError__N__(response.status, 'save failed');
    }
    const created = (await response.json()) as T;
    this.cache.set(created.id, created);
    return created;
  }

  evict(id?: string): void {
    if (id === undefined) {
      this.cache.clear();
      return;
    }
    this.cache.delete(id);
  }

  get size(): number {
    return this.cache.size;
  }
}

export interface Account__N__ extends Identified__N__ {
  login: string;
  email: string;
  roles: ReadonlyArray<'admin' | 'editor' | 'viewer'>;
}

export const accounts__N__ = new Repository__N__<Account__N__>('/api/accounts');
`

const utilityTSX = `export interface Settings__N__ {
  endpoint: string;
  timeoutMs: number;
  attempts: number;
  cache: { enabled: boolean; ttlMs: number };
}

export type Partialize__N__<T> = {
  [K in keyof T]?: T[K] extends object ? Partialize__N__<T[K]> : T[K];
};

export const baseSettings__N__: Settings__N__ = {
  endpoint: 'https://api.example.com',
  timeoutMs: 5000,
  attempts: 3,
  cache: { enabled: true, ttlMs: 60000 },
};

export function overlay__N__<T extends object>(base: T, patch: Partialize__N__<T>): T {
  const out: any = { ...base };
  for (const key of Object.keys(patch) as (keyof T)[]) {
    const value = patch[key];
    if (value === undefined) {
      continue;
    }
    if (value !== null && typeof value === 'object' && !Array.isArray(value)) {
      out[key] = overlay__N__(out[key], value as any);
    } else {
      out[key] = value;
    }
  }
  return out as T;
}

export async function withRetry__N__<T>(
  task: () => Promise<T>,
  attempts: number = 3,
  backoffMs: number = 250
): Promise<T> {
  let last: unknown;
  for (let attempt = 0; attempt < attempts; attempt++) {
    try {
      return await task();
    } catch (err) {
      last = err;
      await new Promise<void>((resolve) => setTimeout(resolve, backoffMs * (attempt + 1)));
    }
  }
  throw last;
}

export function throttle__N__<A extends unknown[]>(
  fn: (...args: A) => void,
  intervalMs: number
): (...args: A) => void {
  let last = 0;
  return (...args: A) => {
    const now = Date.now();
    if (now - last >= intervalMs) {
      last = now;
      fn(...args);
    }
  };
}

export class Emitter__N__<E extends Record<string, unknown[]>> {
  private handlers: { [K in keyof E]?: Array<(...args: E[K]) => void> } = {};

  on<K extends keyof E>(event: K, handler: (...args: E[K]) => void): () => void {
    const list = this.handlers[event] ?? [];
    list.push(handler);
    this.handlers[event] = list;
    return () => this.off(event, handler);
  }

  off<K extends keyof E>(event: K, handler: (...args: E[K]) => void): void {
    const list = this.handlers[event];
    if (!list) {
      return;
    }
    const at = list.indexOf(handler);
    if (at >= 0) {
      list.splice(at, 1);
    }
  }

  emit<K extends keyof E>(event: K, ...args: E[K]): void {
    for (const handler of this.handlers[event] ?? []) {
      handler(...args);
    }
  }
}
`

const storeTSX = `export enum Status__N__ {
  Idle = 'idle',
  Pending = 'pending',
  Done = 'done',
  Failed = 'failed',
}

export interface Todo__N__ {
  id: number;
  title: string;
  done: boolean;
}

export interface State__N__ {
  status: Status__N__;
  todos: Todo__N__[];
  error?: string;
}

export type Action__N__ =
  | { type: 'load' }
  | { type: 'loaded'; todos: Todo__N__[] }
  | { type: 'toggle'; id: number }
  | { type: 'remove'; id: number }
  | { type: 'failed'; error: string };

export const initialState__N__: State__N__ = {
  status: Status__N__.Idle,
  todos: [],
};

export function reducer__N__(state: State__N__, action: Action__N__): State__N__ {
  switch (action.type) {
    case 'load':
      return { ...state, status: Status__N__.Pending, error: undefined };
    case 'loaded':
      return { status: Status__N__.Done, todos: action.todos };
    case 'toggle':
      return {
        ...state,
        todos: state.todos.map((t) => (t.id === action.id ? { ...t, done: !t.done } : t)),
      };
    case 'remove':
      return { ...state, todos: state.todos.filter((t) => t.id !== action.id) };
    case 'failed':
      return { ...state, status: Status__N__.Failed, error: action.error };
    default: {
      const unreachable: never = action;
      return unreachable;
    }
  }
}

export const selectOpen__N__ = (state: State__N__): Todo__N__[] =>
  state.todos.filter((t) => !t.done);

export const selectProgress__N__ = (state: State__N__): number =>
  state.todos.length === 0 ? 0 : (state.todos.length - selectOpen__N__(state).length) / state.todos.length;
`
